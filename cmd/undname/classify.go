package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/skdltmxn/demangle-go/demangle"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <symbol> [symbol ...]",
	Short: "Show which mangling scheme each symbol belongs to",
	Long: `Report the mangling scheme each symbol is routed to.

Classification looks at the name prefix only. Names that match no
known prefix are reported as microsoft, since that scheme has no
single marker and is validated by its parser instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	for _, sym := range args {
		scheme := demangle.Classify(sym)
		fmt.Fprintf(output, "%s %s\n", schemeColor(scheme).Sprintf("%-10s", scheme), sym)
	}
	return nil
}

func schemeColor(s demangle.Scheme) *color.Color {
	switch s {
	case demangle.SchemeItanium:
		return color.New(color.FgGreen)
	case demangle.SchemeRust:
		return color.New(color.FgYellow)
	case demangle.SchemeDLang:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgCyan)
	}
}
