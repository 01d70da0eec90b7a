package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/skadiD/swallow"
	"github.com/spf13/cobra"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		key   string
		ttl   time.Duration
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a statement and print the returned rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if stats {
				a.cfg.Stats = true
			}
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			b := db.Builder().SetSQL(args[0]).Cache(key, ttl)
			rows, err := b.Many(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "%d row(s) affected\n", b.AffectedRows())
			} else if err = printRows(out, rows); err != nil {
				return err
			}
			if b.IsCached() {
				fmt.Fprintf(out, "(cached: %s)\n", key)
			}
			if a.cfg.Stats {
				s := db.Stats()
				fmt.Fprintf(out, "%d queries, %d rows, %s\n", s.NumQueries, s.NumRows, s.TotalTime)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "cache-key", "", "cache the result under this key")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "cache lifetime, 0 never expires")
	cmd.Flags().BoolVar(&stats, "stats", false, "print execution statistics")
	return cmd
}

// printRows 列按名称排序
func printRows(w io.Writer, rows []database.Row) error {
	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	data := pterm.TableData{headers}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = cell(row[h])
		}
		data = append(data, line)
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(database.TimeLayout)
	}
	return fmt.Sprint(v)
}
