package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zeptools/gw-mapper/conf"
)

func newSyncCommand() *cobra.Command {
	var (
		appRoot string
		dbName  string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create the tables of discovered entities if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if appRoot == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				appRoot = wd
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			core, err := conf.NewCore(appRoot, ctx, cancel)
			if err != nil {
				return err
			}
			defer core.ResourceCleanUp()
			if err := core.PrepareSQLDatabases(); err != nil {
				return err
			}
			core.Conf.Entities.Sync = true
			loaded, err := core.LoadEntities(ctx, dbName)
			if err != nil {
				return err
			}
			for _, e := range loaded {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", color.GreenString("synced"), e.Name, e.Table)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&appRoot, "app-root", "", "application root (default: working directory)")
	cmd.Flags().StringVar(&dbName, "db", "main", "configured sql database name")
	return cmd
}
