package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/assessment-hisan/auction-backend/config"
	"github.com/assessment-hisan/auction-backend/database"
	"github.com/assessment-hisan/auction-backend/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	cfgFile string
	// v collects flag bindings before the config is loaded
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "auction",
	Short: "Student auction backend",
	Long: `Backend for a live student auction: students are called into teams
pool by pool while TV displays follow along over WebSocket.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./auction.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd)
}

// setup loads the configuration and installs the logger as the default.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func openDatabase(cfg *config.Config, log *slog.Logger, migrate bool) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.MigrateTables(db); err != nil {
			return nil, err
		}
		log.Info("database tables migrated")
	}
	return db, nil
}
