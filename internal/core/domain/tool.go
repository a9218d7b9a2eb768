// internal/core/domain/tool.go
package domain

import (
	"strconv"
	"strings"

	"pybaseline/internal/platform/errors"
)

// Placeholders accepted by ToolSpec templates.
const (
	placeholderName    = "{name}"
	placeholderVersion = "{version}"
	placeholderTriple  = "{triple}"
)

// DefaultURLTemplate is the release asset layout shared by astral-sh tools.
const DefaultURLTemplate = "https://github.com/astral-sh/{name}/releases/download/{version}/{name}-{triple}.tar.gz"

// DefaultExeTemplate is the executable path inside the release archive.
const DefaultExeTemplate = "{name}-{triple}/{name}"

// KnownVersion pins the expected archive for one version and platform.
type KnownVersion struct {
	Version  string
	Platform Platform
	SHA256   string
	Size     int64
}

// Pinned reports whether the hash is a real pin. All-zero hashes are
// placeholders.
func (k KnownVersion) Pinned() bool {
	return strings.Trim(k.SHA256, "0") != ""
}

// ParseKnownVersion parses a "version|platform|sha256|size" line.
func ParseKnownVersion(line string) (KnownVersion, error) {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) != 4 {
		return KnownVersion{}, errors.Wrapf(errors.ErrInvalidConfig, "known version %q: want version|platform|sha256|size", line)
	}
	platform, err := ParsePlatform(strings.TrimSpace(parts[1]))
	if err != nil {
		return KnownVersion{}, errors.Wrapf(errors.ErrInvalidConfig, "known version %q: %v", line, err)
	}
	hash := strings.ToLower(strings.TrimSpace(parts[2]))
	if len(hash) != 64 {
		return KnownVersion{}, errors.Wrapf(errors.ErrInvalidConfig, "known version %q: sha256 must be 64 hex characters", line)
	}
	size, err := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
	if err != nil || size < 0 {
		return KnownVersion{}, errors.Wrapf(errors.ErrInvalidConfig, "known version %q: bad size", line)
	}
	return KnownVersion{
		Version:  strings.TrimSpace(parts[0]),
		Platform: platform,
		SHA256:   hash,
		Size:     size,
	}, nil
}

// ToolSpec describes a versioned external tool. It is built once from
// configuration and never mutated.
type ToolSpec struct {
	Name          string
	Version       string
	URLTemplate   string
	ExeTemplate   string
	KnownVersions []KnownVersion
}

// NewToolSpec builds a spec using the default astral-sh release layout.
func NewToolSpec(name, version string, known []KnownVersion) ToolSpec {
	return ToolSpec{
		Name:          name,
		Version:       version,
		URLTemplate:   DefaultURLTemplate,
		ExeTemplate:   DefaultExeTemplate,
		KnownVersions: known,
	}
}

// Locate resolves the download URL and archive-relative executable path
// for platform.
func (t ToolSpec) Locate(platform Platform) (url string, exe string, err error) {
	triple, err := platform.Triple()
	if err != nil {
		return "", "", errors.Wrapf(err, "locate %s %s", t.Name, t.Version)
	}
	r := strings.NewReplacer(
		placeholderName, t.Name,
		placeholderVersion, t.Version,
		placeholderTriple, triple,
	)
	urlTmpl, exeTmpl := t.URLTemplate, t.ExeTemplate
	if urlTmpl == "" {
		urlTmpl = DefaultURLTemplate
	}
	if exeTmpl == "" {
		exeTmpl = DefaultExeTemplate
	}
	return r.Replace(urlTmpl), r.Replace(exeTmpl), nil
}

// Pin returns the known version entry for the spec's version on platform.
func (t ToolSpec) Pin(platform Platform) (KnownVersion, bool) {
	for _, k := range t.KnownVersions {
		if k.Version == t.Version && k.Platform == platform {
			return k, true
		}
	}
	return KnownVersion{}, false
}

// String renders "name version".
func (t ToolSpec) String() string {
	return t.Name + " " + t.Version
}
