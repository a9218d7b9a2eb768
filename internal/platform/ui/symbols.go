package ui

import "github.com/pterm/pterm"

// Status is the outcome of a goal or partition.
type Status int

const (
	StatusSuccess Status = iota
	StatusWarning
	StatusError
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Symbol returns the marker printed before status lines.
func (s Status) Symbol() string {
	switch s {
	case StatusSuccess:
		return "✓"
	case StatusWarning:
		return "⚠"
	case StatusError:
		return "✗"
	case StatusSkipped:
		return "⊘"
	default:
		return "?"
	}
}

func (s Status) Color() pterm.Color {
	switch s {
	case StatusSuccess:
		return pterm.FgGreen
	case StatusWarning:
		return pterm.FgYellow
	case StatusError:
		return pterm.FgRed
	default:
		return pterm.FgGray
	}
}

func (s Status) Style() *pterm.Style {
	return pterm.NewStyle(s.Color())
}
