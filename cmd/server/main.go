package main

import (
	"fmt"
	"os"

	"alcyxob/gym-manager/internal/config"

	"github.com/spf13/cobra"
)

// @title Gym Manager API
// @version 1.0
// @description Multi-tenant gym management: members, plans, payments and dashboards.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var configPath string

var rootCommand = &cobra.Command{
	Use:   "gym-manager",
	Short: "Gym management API server and tools",
}

func init() {
	rootCommand.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCommand.AddCommand(serveCommand, ensureIndexesCommand, dashboardCommand)
}

func resolveConfig() config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
