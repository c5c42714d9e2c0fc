package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/skdltmxn/demangle-go/demangle"
	"github.com/skdltmxn/demangle-go/msvc"
	"github.com/spf13/cobra"
)

var (
	outputFile string
	output     io.Writer

	noCallingConvention bool
	noAccessSpecifier   bool
	noTagSpecifier      bool
	noMemberType        bool
	noReturnType        bool
	noVariableType      bool
	forceColor          bool
)

var demangledColor = color.New(color.FgGreen)

var rootCmd = &cobra.Command{
	Use:   "undname [symbol ...]",
	Short: "Demangle compiler-mangled symbol names",
	Long: `undname turns mangled symbol names back into readable declarations.

Microsoft Visual C++ names are demangled natively. Itanium C++ and
Rust names are recognized by their prefix and demangled as well.
Anything unrecognized is echoed back unchanged.

Symbols are taken from the arguments, or read one per line from
standard input when no arguments are given.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output = f
			color.NoColor = true
		} else {
			output = os.Stdout
		}
		if forceColor {
			color.NoColor = false
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
	},
	RunE: runDemangle,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&forceColor, "color", false, "colorize output even when not writing to a terminal")

	rootCmd.Flags().BoolVar(&noCallingConvention, "no-calling-convention", false, "omit calling conventions")
	rootCmd.Flags().BoolVar(&noAccessSpecifier, "no-access-specifier", false, "omit public/protected/private specifiers")
	rootCmd.Flags().BoolVar(&noTagSpecifier, "no-tag-specifier", false, "omit class/struct/union/enum tags")
	rootCmd.Flags().BoolVar(&noMemberType, "no-member-type", false, "omit static/virtual/extern \"C\" qualifiers")
	rootCmd.Flags().BoolVar(&noReturnType, "no-return-type", false, "omit function return types")
	rootCmd.Flags().BoolVar(&noVariableType, "no-variable-type", false, "omit variable types")

	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(classifyCmd)
}

func outputFlags() msvc.OutputFlags {
	flags := msvc.OutputDefault
	if noCallingConvention {
		flags |= msvc.OutputNoCallingConvention
	}
	if noAccessSpecifier {
		flags |= msvc.OutputNoAccessSpecifier
	}
	if noTagSpecifier {
		flags |= msvc.OutputNoTagSpecifier
	}
	if noMemberType {
		flags |= msvc.OutputNoMemberType
	}
	if noReturnType {
		flags |= msvc.OutputNoReturnType
	}
	if noVariableType {
		flags |= msvc.OutputNoVariableType
	}
	return flags
}

func runDemangle(cmd *cobra.Command, args []string) error {
	flags := outputFlags()

	if len(args) > 0 {
		for _, sym := range args {
			printDemangled(sym, flags)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		printDemangled(strings.TrimSpace(scanner.Text()), flags)
	}
	return scanner.Err()
}

func printDemangled(name string, flags msvc.OutputFlags) {
	out := demangled(name, flags)
	if out != name {
		fmt.Fprintln(output, demangledColor.Sprint(out))
	} else {
		fmt.Fprintln(output, out)
	}
}

// demangled applies the render flags when the name is Microsoft-mangled
// and falls back to the full dispatch chain otherwise.
func demangled(name string, flags msvc.OutputFlags) string {
	if flags != msvc.OutputDefault {
		if out, err := demangle.MicrosoftDemangle(name, flags); err == nil {
			return out
		}
	}
	return demangle.Demangle(name)
}
