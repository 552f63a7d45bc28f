package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cadl-lang/cadlc/compiler"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/spf13/cobra"
)

func main() {
	var (
		emitters  []string
		outputDir string
		noEmit    bool
		noStdLib  bool
		diagLevel string
		options   []string
	)

	rootCmd := &cobra.Command{
		Use:           "cadlc",
		Short:         "CADL compiler",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	compileCmd := &cobra.Command{
		Use:   "compile <entry>",
		Short: "Compile a CADL program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(emitters, outputDir, noEmit, noStdLib, diagLevel, options)
			if err != nil {
				return err
			}
			return compile(cmd.Context(), args[0], opts)
		},
	}
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringArrayVar(&emitters, "emit", nil, "emitter to load, as package[:name] (repeatable)")
	compileCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory emitters should write to")
	compileCmd.Flags().BoolVar(&noEmit, "no-emit", false, "run validation but skip emit callbacks")
	compileCmd.Flags().BoolVar(&noStdLib, "no-std-lib", false, "skip loading the standard library")
	compileCmd.Flags().StringVar(&diagLevel, "diagnostic-level", "", "minimum diagnostic severity emitters are advised to act on (warning|error)")
	compileCmd.Flags().StringArrayVar(&options, "option", nil, "miscellaneous emitter option, as key=value (repeatable)")

	ctx, cancel := newCancellableContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// newCancellableContext cancels on SIGINT/SIGTERM so a Host call blocked on
// slow I/O unwinds compiler.Load via the cancellation path spec.md §5
// describes, instead of leaving the process to `go run`'s own signal
// handling decide what happens.
func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func buildOptions(emitters []string, outputDir string, noEmit, noStdLib bool, diagLevel string, rawOptions []string) (compiler.Options, error) {
	opts := compiler.Options{
		Emitters:  emitters,
		OutputDir: outputDir,
		NoEmit:    noEmit,
		NoStdLib:  noStdLib,
		Options:   map[string]string{},
	}

	switch diagLevel {
	case "", "warning":
		opts.DiagnosticLevel = compiler.DiagnosticLevelWarning
	case "error":
		opts.DiagnosticLevel = compiler.DiagnosticLevelError
	default:
		return opts, fmt.Errorf("unrecognized --diagnostic-level %q (want warning or error)", diagLevel)
	}
	if diagLevel == "" {
		opts.DiagnosticLevel = compiler.DiagnosticLevelDefault
	}

	for _, raw := range rawOptions {
		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			return opts, fmt.Errorf("invalid --option %q, want key=value", raw)
		}
		opts.Options[k] = v
	}

	if exe, err := os.Executable(); err == nil {
		opts.CurrentExecutable = exe
	}
	return opts, nil
}

// compile runs the program loader and reports diagnostics to stderr,
// returning a non-nil error (so main exits 1) whenever loading aborted or
// any diagnostic reached error severity.
func compile(ctx context.Context, entry string, opts compiler.Options) error {
	host := NewOSHost()

	prog, err := compiler.Load(ctx, host, entry, opts)
	if err != nil {
		return fmt.Errorf("compilation aborted: %w", err)
	}

	for _, d := range prog.Diagnostics().All() {
		reportDiagnostic(os.Stderr, d)
	}
	if prog.HasError() {
		return fmt.Errorf("compilation failed with %d error(s)", countErrors(prog))
	}
	return nil
}

func countErrors(prog *compiler.Program) int {
	n := 0
	for _, d := range prog.Diagnostics().All() {
		if d.Severity == diagnostic.SeverityError {
			n++
		}
	}
	return n
}

func reportDiagnostic(w *os.File, d diagnostic.Diagnostic) {
	fmt.Fprintln(w, d.Format())
}
