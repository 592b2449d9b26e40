package printer

import (
	"github.com/fatih/color"
)

type ColorPrinter struct {
	Success func(format string, a ...interface{}) string
	Error   func(format string, a ...interface{}) string
	Warning func(format string, a ...interface{}) string
	Info    func(format string, a ...interface{}) string
	Debug   func(format string, a ...interface{}) string
	Accent  func(format string, a ...interface{}) string
}

// NewColorPrinter returns plain formatters when enabled is false.
func NewColorPrinter(enabled bool) *ColorPrinter {
	mk := func(attrs ...color.Attribute) func(string, ...interface{}) string {
		c := color.New(attrs...)
		if !enabled {
			c.DisableColor()
		}
		return c.SprintfFunc()
	}
	return &ColorPrinter{
		Success: mk(color.FgGreen),
		Error:   mk(color.FgRed),
		Warning: mk(color.FgYellow),
		Info:    mk(color.FgBlue),
		Debug:   mk(color.FgCyan),
		Accent:  mk(color.FgMagenta, color.Bold),
	}
}
