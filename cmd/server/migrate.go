package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/database"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return migrate(db, registeredPlugins())
	},
}

var purgeLogsCmd = &cobra.Command{
	Use:   "purge-logs",
	Short: "Delete stored error logs older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = cfg.LogRetentionDays
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		deleted, err := logging.Purge(ctx, db, time.Now().UTC().AddDate(0, 0, -days))
		if err != nil {
			return fmt.Errorf("purge logs: %w", err)
		}
		slog.Info("system logs purged", "deleted", deleted, "retention_days", days)
		return nil
	},
}

func init() {
	purgeLogsCmd.Flags().Int("days", 0, "retention in days (defaults to LOG_RETENTION_DAYS)")
}

// migrate creates the shared tables and every plugin's tables.
func migrate(db *gorm.DB, plugins []apps.Plugin) error {
	if err := database.MigrateShared(db); err != nil {
		return fmt.Errorf("shared migration failed: %w", err)
	}
	for _, p := range plugins {
		models := p.Models()
		if len(models) == 0 {
			continue
		}
		if err := database.MigrateModels(db, models); err != nil {
			return fmt.Errorf("plugin %s migration failed: %w", p.ID(), err)
		}
		slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
	}
	return nil
}
