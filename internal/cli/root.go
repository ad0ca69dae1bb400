package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nonibytes/pgfulltext/internal/cli/commands"
	"github.com/nonibytes/pgfulltext/internal/cliopt"
	"github.com/nonibytes/pgfulltext/internal/cliutil"
)

// Version is injected at build time.
var Version = "dev"

// NewRootCommand wires the command tree around env.
func NewRootCommand(env *cliutil.Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "pgfulltext",
		Short:         "Full-text search over an auto-generated PostgreSQL query schema",
		Long:          rootLong,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := cliopt.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			log, err := cliutil.NewLogger(s, env.Err)
			if err != nil {
				return err
			}
			env.Settings = s
			env.Log = log
			return nil
		},
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)
	cliopt.BindGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		commands.NewSchemaCommand(env),
		commands.NewQueryCommand(env),
		commands.NewServeCommand(env),
	)
	return root
}

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	env := cliutil.NewEnv(os.Stdout, os.Stderr)
	root := NewRootCommand(env)
	root.SetArgs(argv)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
