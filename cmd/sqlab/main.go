package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return exitBadArgs
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlab <scriptA> <scriptB> [--only N]",
		Short: "Run two SQL scripts and compare their results row by row",
		Long: `sqlab executes two SQL scripts against the same database and compares
their result sets row by row. It exits 0 when they match, 1 on a mismatch,
2 when a script cannot be found, 6 when a script fails to execute and 160
on bad arguments.`,
		// --only must tolerate a missing or malformed value, so arguments are
		// parsed by the command itself.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = execute(cmd.Context(), args, stdout, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}
