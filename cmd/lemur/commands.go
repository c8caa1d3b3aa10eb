package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"mit.edu/dsg/lemurdb/catalog"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/execution"
)

func importCmd() *cobra.Command {
	var table, columns string
	var noHeader bool
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Create a relation and load a CSV file into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := catalog.ParseColumns(columns)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			hasHeader := cfg.CSV.HasHeader && !noHeader
			rel, n, err := db.Import(table, cols, f, hasHeader)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tuples into %s\n", n, rel.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "name of the relation to create")
	cmd.Flags().StringVar(&columns, "columns", "", "column list, e.g. id:integer,name:text(32)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first line as data")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List relations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, rel := range db.Catalog.ListRelations() {
				cols := make([]string, len(rel.Columns))
				for i, c := range rel.Columns {
					cols[i] = c.Name + ":" + c.Type.String()
				}
				fmt.Fprintf(out, "%s (%s)\n", rel.Name, strings.Join(cols, ", "))
			}
			return nil
		},
	}
}

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <table>",
		Short: "Remove a relation and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Drop(args[0]); err != nil {
				return err
			}
			return nil
		},
	}
}

func scanCmd() *cobra.Command {
	var sortBy string
	var desc bool
	var limit int
	cmd := &cobra.Command{
		Use:   "scan <table>",
		Short: "Print the tuples of a relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, rel, err := db.Scan(args[0])
			if err != nil {
				return err
			}
			schema := rel.Schema()
			if sortBy != "" {
				col, err := columnIndex(schema, sortBy)
				if err != nil {
					return err
				}
				order := execution.SortOrderAscending
				if desc {
					order = execution.SortOrderDescending
				}
				q = q.SimpleSort(col, schema.Columns[col].Type, order)
			}
			if limit >= 0 {
				q = q.Limit(limit)
			}
			return printQuery(cmd.OutOrStdout(), q, schema)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "column to sort on")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort in descending order")
	cmd.Flags().IntVar(&limit, "limit", -1, "maximum number of tuples to print")
	return cmd
}

func countCmd() *cobra.Command {
	var groupBy string
	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count tuples, optionally per distinct value of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, rel, err := db.Scan(args[0])
			if err != nil {
				return err
			}
			schema := rel.Schema()
			first := schema.Columns[0]
			if groupBy == "" {
				q = q.Aggregate(execution.Count, 0, first.Type, execution.NoGroupBy)
				return printQuery(cmd.OutOrStdout(), q, catalog.NewSchema(catalog.Column{Name: "count", Type: common.Integer}))
			}

			col, err := columnIndex(schema, groupBy)
			if err != nil {
				return err
			}
			group := schema.Columns[col]
			q = q.SimpleSort(col, group.Type, execution.SortOrderAscending).
				Aggregate(execution.Count, 0, first.Type, col)
			return printQuery(cmd.OutOrStdout(), q, catalog.NewSchema(group, catalog.Column{Name: "count", Type: common.Integer}))
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", "", "column to group on")
	return cmd
}

func joinCmd() *cobra.Command {
	var on string
	var limit int
	cmd := &cobra.Command{
		Use:   "join <outer> <inner>",
		Short: "Equi-join two relations with a nested loops join",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outerQuery, outer, err := db.Scan(args[0])
			if err != nil {
				return err
			}
			innerQuery, inner, err := db.Scan(args[1])
			if err != nil {
				return err
			}
			leftName, rightName, ok := strings.Cut(on, "=")
			if !ok {
				return fmt.Errorf("--on must be of the form outer_col=inner_col, got %q", on)
			}
			leftCol, err := columnIndex(outer.Schema(), strings.TrimSpace(leftName))
			if err != nil {
				return err
			}
			rightCol, err := columnIndex(inner.Schema(), strings.TrimSpace(rightName))
			if err != nil {
				return err
			}
			if outer.Columns[leftCol].Type != inner.Columns[rightCol].Type {
				return common.LemurError{
					Code:      common.UnsupportedOperationError,
					ErrString: fmt.Sprintf("cannot join %s column '%s' with %s column '%s'",
						outer.Columns[leftCol].Type, leftName, inner.Columns[rightCol].Type, rightName),
				}
			}

			q := outerQuery.NestedLoopsJoin(innerQuery, leftCol, rightCol)
			if limit >= 0 {
				q = q.Limit(limit)
			}
			return printQuery(cmd.OutOrStdout(), q, outer.Schema().Concat(inner.Schema()))
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "join condition, e.g. movieId=movieId")
	cmd.Flags().IntVar(&limit, "limit", -1, "maximum number of tuples to print")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

func columnIndex(schema catalog.Schema, name string) (int, error) {
	col := schema.ColumnIndex(name)
	if col < 0 {
		return 0, common.LemurError{
			Code:      common.NoSuchObjectError,
			ErrString: fmt.Sprintf("no column '%s'", name),
		}
	}
	return col, nil
}

// printQuery runs q and writes a header line followed by one line per tuple.
func printQuery(out io.Writer, q *execution.Query, schema catalog.Schema) error {
	tuples, err := q.Collect()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.Join(schema.Names(), ", "))
	types := schema.Types()
	for _, t := range tuples {
		s, err := t.Format(types)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	}
	return nil
}
