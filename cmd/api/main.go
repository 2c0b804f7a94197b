// @title           Tweets API
// @version         1.0
// @description     Tweet CRUD with session auth and search.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey  CookieAuth
// @in                          cookie
// @name                        sessionid
package main

import (
	"fmt"
	"os"

	"github.com/swoyamsuwal/django-twitter/internal/config"
	"github.com/swoyamsuwal/django-twitter/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCMD = &cobra.Command{
	Use:           "api",
	Short:         "tweets API service",
	Long:          `HTTP API for posting, editing, deleting and searching tweets`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCMD.RunE(cmd, args)
	},
}

// initialize loads configuration from the environment and builds the logger.
func initialize() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := rootCMD.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
