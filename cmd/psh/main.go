// Command psh exposes the parser/visualization and trap-table built-ins
// of spec.md §6 as a cobra CLI, grounded on the teacher's (opal-lang-opal
// cli) cobra.Command{RunE: ...} construction style.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psh-go/psh/ast"
	"github.com/psh-go/psh/format"
	"github.com/psh-go/psh/parser"
	"github.com/psh-go/psh/source"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return 2
	}
	return 0
}

// exitCoder lets a subcommand report a precise exit code (0/1/2 per
// spec.md §6.1) instead of cobra's blanket "non-zero on error".
type exitCoder interface {
	error
	ExitCode() int
}

type cmdError struct {
	msg  string
	code int
}

func (e *cmdError) Error() string { return e.msg }
func (e *cmdError) ExitCode() int { return e.code }

func usageError(format string, args ...any) error {
	return &cmdError{msg: fmt.Sprintf(format, args...), code: 2}
}

func parseError(format string, args ...any) error {
	return &cmdError{msg: fmt.Sprintf(format, args...), code: 1}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "psh",
		Short:         "psh parser/visualization and trap-table utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newParseTreeCmd(), newShowASTCmd(), newASTDotCmd(), newTrapCmd())
	return root
}

func defaultFormat() string {
	if f := os.Getenv("PSH_AST_FORMAT"); f != "" {
		return f
	}
	return "tree"
}

func renderFormatted(top *ast.TopLevel, formatName string, showSpans bool) (string, error) {
	switch formatName {
	case "pretty":
		return format.Print(top), nil
	case "tree":
		style := format.Normal
		if showSpans {
			style = format.Detailed
		}
		return format.Tree(top, style), nil
	case "compact":
		return format.Tree(top, format.Compact), nil
	case "dot":
		return format.DOT(top), nil
	case "sexp":
		return format.SExpr(top), nil
	default:
		return "", usageError("parse-tree: unknown format %q", formatName)
	}
}

func parseJoined(args []string) (*ast.TopLevel, error) {
	src := strings.Join(args, " ")
	top, err := parser.Parse(src)
	if err != nil {
		var located error = &source.LocatedError{Filename: "psh", Line: 1, Err: err}
		return nil, parseError("%s", located)
	}
	return top, nil
}

func newParseTreeCmd() *cobra.Command {
	var formatName string
	var showSpans bool
	cmd := &cobra.Command{
		Use:   "parse-tree COMMAND...",
		Short: "Tokenize and parse COMMAND, printing the result in the selected format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError("parse-tree: at least one COMMAND argument is required")
			}
			top, err := parseJoined(args)
			if err != nil {
				return err
			}
			out, err := renderFormatted(top, formatName, showSpans)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", defaultFormat(), "output format: pretty|tree|compact|dot|sexp")
	cmd.Flags().BoolVarP(&showSpans, "positions", "p", false, "show source spans")
	return cmd
}

func newShowASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ast COMMAND...",
		Short: "Equivalent to parse-tree -f pretty",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError("show-ast: at least one COMMAND argument is required")
			}
			top, err := parseJoined(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Print(top))
			return nil
		},
	}
}

func newASTDotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast-dot COMMAND...",
		Short: "Equivalent to parse-tree -f dot, with a rendering hint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError("ast-dot: at least one COMMAND argument is required")
			}
			top, err := parseJoined(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "# Pipe this output through: dot -Tpng -o ast.png")
			fmt.Fprintln(out, "# e.g. psh ast-dot '...' | dot -Tpng -o ast.png")
			fmt.Fprintln(out, format.DOT(top))
			return nil
		},
	}
}

func newTrapCmd() *cobra.Command {
	var list bool
	var printSet bool
	cmd := &cobra.Command{
		Use:   "trap [ACTION] NAME...",
		Short: "Inspect or set the trap table (spec.md §6.2)",
		RunE: func(cmd *cobra.Command, args []string) error {
			traps := source.NewTrapTable(noopRunner{})
			out := cmd.OutOrStdout()

			switch {
			case list:
				for _, info := range source.ListSignals() {
					fmt.Fprintf(out, "%2d) %s\n", info.Number, info.Name)
				}
				return nil
			case printSet || len(args) == 0:
				for _, line := range traps.ShowTraps(args) {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			if args[0] == "--" {
				args = args[1:]
			}
			if len(args) < 2 {
				return usageError("trap: usage: trap ACTION NAME...")
			}
			action, signals := args[0], args[1:]
			code, invalid := traps.SetTrap(action, signals)
			if code != 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "trap: %s: invalid signal specification\n", invalid)
				return &cmdError{msg: "invalid signal specification", code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list signal names with their numeric values")
	cmd.Flags().BoolVarP(&printSet, "print", "p", false, "print currently set traps")
	return cmd
}

type noopRunner struct{}

func (noopRunner) RunTrapAction(string) (int, error) { return 0, nil }
