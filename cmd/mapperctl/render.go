package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/mapper"
)

var osFs = afero.NewOsFs()

func newRenderCommand() *cobra.Command {
	var (
		entitiesRoot string
		dbType       string
	)
	cmd := &cobra.Command{
		Use:   "render <document.xml> <statement> [key=value...]",
		Short: "Print the SQL a statement renders to",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}
			helpers, err := loadHelpers(entitiesRoot, dbType)
			if err != nil {
				return err
			}
			stmts, err := compileFile(args[0], helpers)
			if err != nil {
				return err
			}
			s, ok := stmts[args[1]]
			if !ok {
				return fmt.Errorf("%w: %s", mapper.ErrStatementNotFound, args[1])
			}
			sqlText, err := s.Render(params)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			normalized := mapper.NormalizeSQLFor(dbType, sqlText)
			fmt.Fprintf(out, "%s %s\n", color.CyanString("--"), s.Kind)
			fmt.Fprintln(out, normalized)
			if names := sqldb.NamedParams(normalized); len(names) > 0 {
				fmt.Fprintf(out, "%s params %s\n", color.CyanString("--"), describeParams(names, params))
			}
			if s.Kind == sqldb.QuerySelect {
				fmt.Fprintf(out, "%s count\n", color.CyanString("--"))
				fmt.Fprintln(out, mapper.NormalizeSQLFor(dbType, mapper.CountQuery(sqlText)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&entitiesRoot, "entities", "e", "", "entity definition tree for the fields helper")
	cmd.Flags().StringVar(&dbType, "db-type", sqldb.TypeSQLite, "dialect for identifier quoting")
	return cmd
}

// describeParams lists the named replacements of a statement, flagging those
// missing from params.
func describeParams(names []string, params map[string]any) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n
		if _, ok := params[n]; !ok {
			parts[i] += color.YellowString(" (unbound)")
		}
	}
	return strings.Join(parts, ", ")
}

// parseParams turns key=value arguments into template parameters.
// A value containing commas becomes a list.
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad parameter %q, want key=value", a)
		}
		if strings.Contains(v, ",") {
			params[k] = strings.Split(v, ",")
			continue
		}
		params[k] = v
	}
	return params, nil
}
