package main

import (
	"github.com/swoyamsuwal/django-twitter/internal/app"

	"github.com/spf13/cobra"
)

var migrateCMD = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := initialize()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		return app.RunMigrations(cfg.PG.DSN, command, log)
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
