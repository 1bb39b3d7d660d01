package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/filter"
)

func newSQLCmd(a *app) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "sql FILE...",
		Short: "Compile request files to SQL",
		Long: "Compile JSON or YAML request files to SELECT statements.\n" +
			"With --dimension, compile the member query of one column instead.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStdin(args); err != nil {
				return err
			}
			compile := a.compiler.SQL
			if column != "" {
				compile = func(req aggql.Request) (string, error) {
					return a.compiler.DimensionValues(req, column)
				}
			}
			out, err := compileFiles(cmd.Context(), cmd.InOrStdin(), args, compile)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), args, out, "sql")
		},
	}
	cmd.Flags().StringVar(&column, "dimension", "", "Compile the distinct members of this column")
	return cmd
}

func newDSLCmd(a *app) *cobra.Command {
	var search bool

	cmd := &cobra.Command{
		Use:   "dsl FILE...",
		Short: "Compile request files to a search DSL query",
		Long: "Compile the filters of JSON or YAML request files to a bool query.\n" +
			"With --search, emit a complete search body with terms and metric aggregations.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStdin(args); err != nil {
				return err
			}
			build := a.compiler.DSL
			if search {
				build = a.compiler.Search
			}
			compile := func(req aggql.Request) (string, error) {
				doc, err := build(req)
				if err != nil {
					return "", err
				}
				return indentDocument(doc)
			}
			out, err := compileFiles(cmd.Context(), cmd.InOrStdin(), args, compile)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), args, out, "dsl")
		},
	}
	cmd.Flags().BoolVar(&search, "search", false, "Emit a search body with aggregations")
	return cmd
}

func indentDocument(doc filter.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// print writes compiled outputs. Text output separates files with a comment
// header when more than one file was compiled.
func (a *app) print(w io.Writer, paths, out []string, key string) error {
	if a.output == "json" {
		items := make([]map[string]any, len(out))
		for i := range out {
			var value any = out[i]
			if key == "dsl" {
				value = json.RawMessage(out[i])
			}
			items[i] = map[string]any{"file": paths[i], key: value}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	for i, text := range out {
		if len(out) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "-- %s\n", paths[i])
		}
		_, _ = fmt.Fprintln(w, text)
	}
	return nil
}
