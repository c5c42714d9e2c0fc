package main

import (
	"fmt"

	"github.com/skdltmxn/demangle-go/msvc"
	"github.com/spf13/cobra"
)

var astBackrefs bool

var astCmd = &cobra.Command{
	Use:   "ast <symbol>",
	Short: "Print the parse tree of a Microsoft-mangled symbol",
	Long: `Parse a Microsoft-mangled symbol and print its tree structure.

The demangled form is printed first, followed by one node per line
indented by nesting depth. Use --backrefs to dump the backreference
tables left over from the parse.`,
	Args: cobra.ExactArgs(1),
	RunE: runAst,
}

func init() {
	astCmd.Flags().BoolVarP(&astBackrefs, "backrefs", "b", false, "dump backreference tables after the tree")
}

func runAst(cmd *cobra.Command, args []string) error {
	d := msvc.NewDemangler()
	sym, err := d.Parse(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse symbol: %w", err)
	}

	fmt.Fprintf(output, "%s\n\n", msvc.Render(sym, msvc.OutputDefault))
	if err := msvc.WriteTree(output, sym); err != nil {
		return err
	}
	if rest := d.Remaining(); rest != "" {
		fmt.Fprintf(output, "\nTrailing characters: %q\n", rest)
	}

	if astBackrefs {
		fmt.Fprintln(output)
		return d.DumpBackReferences(output)
	}
	return nil
}
