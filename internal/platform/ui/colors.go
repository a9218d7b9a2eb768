package ui

import "github.com/pterm/pterm"

// StyleHeader is used for goal section titles.
var StyleHeader = pterm.NewStyle(pterm.Bold, pterm.FgCyan)
