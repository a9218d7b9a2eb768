package rules

import "pybaseline/internal/core/domain"

// TranslateFmt overlays the formatter's captured files on input and
// reports which paths changed. Files the formatter did not hand back keep
// their input content; exec bits always come from input.
func TranslateFmt(input domain.Snapshot, res domain.ProcessResult) domain.FmtResult {
	entries := make([]domain.FileEntry, 0, input.Len())
	for _, e := range input.Entries() {
		if out, ok := res.Output.Lookup(e.Path); ok {
			e.Digest = out.Digest
			e.Size = out.Size
		}
		entries = append(entries, e)
	}
	output := domain.NewSnapshotUnchecked(entries)

	return domain.FmtResult{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		Input:    input,
		Output:   output,
		Changed:  input.Changed(output),
	}
}
