package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hugr-lab/aggql/executor"
	"github.com/hugr-lab/aggql/filter"
	"github.com/hugr-lab/aggql/result"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		dbPath   string
		initFile string
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a request on DuckDB and print the result",
		Long: "Compile a request file, execute it on DuckDB and print the decoded result.\n" +
			"Without a catalog in the request, column types are described from the table.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = a.config.DuckDBPath
			}
			db, err := executor.Open(dbPath, a.logger)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			if initFile != "" {
				script, err := os.ReadFile(initFile) //nolint:gosec // path is caller-controlled
				if err != nil {
					return fmt.Errorf("read %s: %w", initFile, err)
				}
				if err := db.Exec(cmd.Context(), string(script)); err != nil {
					return fmt.Errorf("init script: %w", err)
				}
			}

			res, err := a.compiler.Run(cmd.Context(), db, req)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return printResultJSON(cmd.OutOrStdout(), res)
			}
			return printResultTable(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database file (default $AGGQL_DUCKDB_PATH, in-memory when unset)")
	cmd.Flags().StringVar(&initFile, "init", "", "SQL script executed before the request")
	return cmd
}

func headers(res *result.AggregateResult) []string {
	names := make([]string, result.Width(res.Index))
	for _, c := range res.Index {
		if names[c.Index] == "" {
			names[c.Index] = c.Name
		}
	}
	return names
}

func printResultTable(w io.Writer, res *result.AggregateResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers(res), "\t"))
	for _, row := range res.Data {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == filter.NullSentinel {
				v = "NULL"
			}
			cells[i] = v
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", res.Len())
	return err
}

func printResultJSON(w io.Writer, res *result.AggregateResult) error {
	names := headers(res)
	dims := make([]bool, len(names))
	for _, c := range res.Dimensions() {
		dims[c.Index] = true
	}
	rows := make([]map[string]any, len(res.Data))
	for r, row := range res.Data {
		m := make(map[string]any, len(row))
		for i, v := range row {
			if dims[i] && v == filter.NullSentinel {
				m[names[i]] = nil
				continue
			}
			m[names[i]] = v
		}
		rows[r] = m
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
