package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/pgfulltext/internal/cliutil"
)

func NewSchemaCommand(env *cliutil.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the generated schema",
	}
	cmd.AddCommand(newSchemaPrintCommand(env), newSchemaFieldsCommand(env))
	return cmd
}

func newSchemaPrintCommand(env *cliutil.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the schema as GraphQL SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := env.OpenService(cmd.Context(), env.Options())
			if err != nil {
				return err
			}
			defer svc.Close()
			fmt.Fprint(env.Out, svc.SDL())
			return nil
		},
	}
}

func newSchemaFieldsCommand(env *cliutil.Env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List discovered full-text fields per table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := env.OpenService(cmd.Context(), env.Options())
			if err != nil {
				return err
			}
			defer svc.Close()
			fields, err := svc.FullTextFields()
			if err != nil {
				return err
			}
			if cliutil.ParseOutputFormat(format) == cliutil.FormatJSON {
				cliutil.PrintJSON(env.Out, fields)
				return nil
			}
			for _, f := range fields {
				fmt.Fprintf(env.Out, "%s.%s (%s %s):\n", f.Type, f.Field, f.Kind, f.Source)
				if f.RankField != "" {
					fmt.Fprintf(env.Out, "  filter: matches, rank: %s\n", f.RankField)
				}
				if f.AscValue != "" {
					fmt.Fprintf(env.Out, "  order: %s, %s\n", f.AscValue, f.DescValue)
				}
			}
			if len(fields) == 0 {
				fmt.Fprintln(env.Out, "no full-text fields found")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "format: pretty|json")
	return cmd
}
