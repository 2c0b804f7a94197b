package main

import (
	"context"
	"fmt"

	"github.com/swoyamsuwal/django-twitter/internal/app"
	"github.com/swoyamsuwal/django-twitter/internal/repo"
	"github.com/swoyamsuwal/django-twitter/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var addUserCMD = &cobra.Command{
	Use:   "adduser",
	Short: "create a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		cfg, log, err := initialize()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := context.Background()
		db, err := app.OpenPostgres(ctx, cfg.PG.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		pub, err := app.OpenPublisher(cfg.Events)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()

		users := service.NewUserService(repo.NewPGUserRepo(db), pub, log)
		u, err := users.Register(ctx, username, email, password)
		if err != nil {
			return fmt.Errorf("add user %q: %w", username, err)
		}
		log.Info("user created", zap.Int64("id", u.ID), zap.String("username", u.Username))
		return nil
	},
}

func init() {
	addUserCMD.Flags().String("username", "", "login name")
	addUserCMD.Flags().String("email", "", "email address (optional)")
	addUserCMD.Flags().String("password", "", "plaintext password, stored as a bcrypt hash")
	_ = addUserCMD.MarkFlagRequired("username")
	_ = addUserCMD.MarkFlagRequired("password")
	rootCMD.AddCommand(addUserCMD)
}
