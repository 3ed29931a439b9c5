package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zeptools/gw-mapper/entity"
	"github.com/zeptools/gw-mapper/mapper"
	"github.com/zeptools/gw-mapper/tpl"
)

func newCheckCommand() *cobra.Command {
	var entitiesRoot string
	cmd := &cobra.Command{
		Use:   "check <document.xml>...",
		Short: "Parse and compile mapping documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helpers, err := loadHelpers(entitiesRoot, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range args {
				stmts, err := compileFile(p, helpers)
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", color.RedString("FAIL"), p, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s %s (%d statements)\n", color.GreenString("OK"), p, len(stmts))
				names := make([]string, 0, len(stmts))
				for n := range stmts {
					names = append(names, n)
				}
				sort.Strings(names)
				for _, n := range names {
					s := stmts[n]
					single := ""
					if s.Single {
						single = " single"
					}
					fmt.Fprintf(out, "  %-6s %s%s\n", s.Kind, n, single)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&entitiesRoot, "entities", "e", "", "entity definition tree for the fields helper")
	return cmd
}

func compileFile(p string, helpers *tpl.Helpers) (map[string]*mapper.Statement, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := mapper.ParseDocument(f)
	if err != nil {
		return nil, err
	}
	return mapper.CompileDocument(doc, helpers)
}

// loadHelpers registers the entities found under root, if any.
func loadHelpers(root, dbType string) (*tpl.Helpers, error) {
	reg := entity.NewRegistry()
	if root != "" {
		found, err := entity.Discover(osFs, root, entity.DefaultExclude)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			if err := reg.Register(e); err != nil {
				return nil, err
			}
		}
	}
	return &tpl.Helpers{Entities: reg, DBType: dbType}, nil
}
