package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nonibytes/pgfulltext/internal/cliutil"
	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
)

type queryOptions struct {
	file    string
	field   string
	filter  string
	orderBy []string
	sel     string
	first   int
	offset  int
	explain bool
	format  string
}

func NewQueryCommand(env *cliutil.Env) *cobra.Command {
	var o queryOptions
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a connection request",
		Long: `Run a connection request. The request can come from flags or from a
YAML/JSON file (--file); flags given on the command line override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(o, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			svc, err := env.OpenService(cmd.Context(), env.Options())
			if err != nil {
				return err
			}
			defer svc.Close()

			if o.explain {
				plan, err := svc.Prepare(req)
				if err != nil {
					return err
				}
				if cliutil.ParseOutputFormat(o.format) == cliutil.FormatJSON {
					cliutil.PrintJSON(env.Out, map[string]any{"sql": plan.SQL, "args": plan.Args, "ranked": plan.Ranked})
					return nil
				}
				fmt.Fprintf(env.Out, "=== SQL ===\n%s\n\n=== Args ===\n", plan.SQL)
				for i, a := range plan.Args {
					fmt.Fprintf(env.Out, "  $%d = %v\n", i+1, a)
				}
				return nil
			}

			start := time.Now()
			res, err := svc.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			env.Log.WithField("duration", time.Since(start)).Debug("query finished")
			if cliutil.ParseOutputFormat(o.format) == cliutil.FormatJSON {
				cliutil.PrintJSON(env.Out, res)
				return nil
			}
			cliutil.PrintRows(env.Out, res.Rows, req.Selection)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.file, "file", "", "request file (YAML or JSON)")
	f.StringVarP(&o.field, "field", "f", "", "root connection field, e.g. allJobs")
	f.StringVar(&o.filter, "filter", "", `filter as JSON, e.g. '{"fullText":{"matches":"fruit"}}'`)
	f.StringSliceVar(&o.orderBy, "order-by", nil, "orderBy enum values (comma-separated)")
	f.StringVarP(&o.sel, "select", "s", "", `selection, e.g. 'id name fullTextRank clientByClientId { name }'`)
	f.IntVar(&o.first, "first", 0, "limit")
	f.IntVar(&o.offset, "offset", 0, "offset")
	f.BoolVar(&o.explain, "explain", false, "print the SQL instead of running it")
	f.StringVar(&o.format, "format", "pretty", "format: pretty|json")
	return cmd
}

// buildRequest merges the request file with the flags that were set.
func buildRequest(o queryOptions, changed func(string) bool) (connection.Request, error) {
	var req connection.Request
	if o.file != "" {
		b, err := os.ReadFile(o.file)
		if err != nil {
			return req, err
		}
		if err := yaml.Unmarshal(b, &req); err != nil {
			return req, fmt.Errorf("parse %s: %w", o.file, err)
		}
		if req.Filter, err = normalizeFilter(req.Filter); err != nil {
			return req, fmt.Errorf("parse %s: %w", o.file, err)
		}
	}
	if changed("field") {
		req.Field = o.field
	}
	if changed("filter") {
		var filter map[string]any
		if err := json.Unmarshal([]byte(o.filter), &filter); err != nil {
			return req, fmt.Errorf("--filter: %w", err)
		}
		req.Filter = filter
	}
	if changed("order-by") {
		req.OrderBy = o.orderBy
	}
	if changed("select") {
		sel, err := connection.ParseSelection(o.sel)
		if err != nil {
			return req, fmt.Errorf("--select: %w", err)
		}
		req.Selection = sel
	}
	if changed("first") {
		first := o.first
		req.First = &first
	}
	if changed("offset") {
		offset := o.offset
		req.Offset = &offset
	}

	if req.Field == "" {
		return req, errors.New("missing --field")
	}
	if len(req.Selection) == 0 {
		return req, errors.New("missing --select")
	}
	return req, nil
}

// normalizeFilter gives YAML-decoded filters the same shapes a JSON body
// has (float64 numbers, []any lists).
func normalizeFilter(in map[string]any) (map[string]any, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
