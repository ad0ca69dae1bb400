package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/pgfulltext/internal/cliopt"
	"github.com/nonibytes/pgfulltext/pgfulltext"
	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// NewLogger builds the process logger from settings.
func NewLogger(s cliopt.Settings, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	switch s.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", s.LogFormat)
	}
	return log, nil
}

// ServiceOptions maps settings onto library options.
func ServiceOptions(s cliopt.Settings, log logrus.FieldLogger) pgfulltext.Options {
	return pgfulltext.Options{
		Schemas:        s.Schemas,
		CachePath:      s.CachePath,
		ReadCache:      s.ReadCache,
		WriteCache:     s.WriteCache,
		QueryCacheSize: s.TSQueryCacheSize,
		Logger:         log,
	}
}

// OpenService connects and builds the schema.
func OpenService(ctx context.Context, s cliopt.Settings, opts pgfulltext.Options) (*pgfulltext.Service, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	db, err := pgfulltext.Connect(ctx, s.DatabaseURL, s.Schemas)
	if err != nil {
		return nil, err
	}
	svc, err := pgfulltext.Open(ctx, db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return svc, nil
}

// PrintRows writes rows as indented "name: value" blocks in selection order.
func PrintRows(w io.Writer, rows []map[string]any, sel []connection.Selection) {
	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printObject(w, row, sel, "")
	}
	fmt.Fprintf(w, "\n--- %d rows ---\n", len(rows))
}

func printObject(w io.Writer, row map[string]any, sel []connection.Selection, indent string) {
	names := make([]string, 0, len(sel))
	nested := map[string][]connection.Selection{}
	for _, s := range sel {
		names = append(names, s.Name)
		nested[s.Name] = s.Selection
	}
	if len(names) == 0 {
		for k := range row {
			names = append(names, k)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		v := row[name]
		if obj, ok := v.(map[string]any); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, name)
			printObject(w, obj, nested[name], indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, name, formatValue(v))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		if strings.ContainsAny(x, "\n\t") {
			return fmt.Sprintf("%q", x)
		}
		return x
	case json.RawMessage:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
