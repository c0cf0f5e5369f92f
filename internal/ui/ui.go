// Package ui provides terminal rendering helpers for the CLI.
package ui

import (
	"os"

	"github.com/fatih/color"
)

var (
	accent = color.New(color.FgCyan, color.Bold)
	pass   = color.New(color.FgGreen, color.Bold)
	warn   = color.New(color.FgYellow, color.Bold)
	fail   = color.New(color.FgRed, color.Bold)
	dim    = color.New(color.Faint)
)

func init() {
	// fatih/color honors NO_COLOR on its own; also disable when stdout
	// is redirected via the conventional TERM=dumb.
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// RenderAccent highlights informational markers.
func RenderAccent(s string) string { return accent.Sprint(s) }

// RenderPass highlights success markers.
func RenderPass(s string) string { return pass.Sprint(s) }

// RenderWarn highlights warnings.
func RenderWarn(s string) string { return warn.Sprint(s) }

// RenderFail highlights failures.
func RenderFail(s string) string { return fail.Sprint(s) }

// RenderDim de-emphasizes secondary detail.
func RenderDim(s string) string { return dim.Sprint(s) }
