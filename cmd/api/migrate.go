package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica (o revierte con --down) las migraciones embebidas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

			down, _ := cmd.Flags().GetBool("down")
			if down {
				if err := postgres.MigrateDown(cfg.DB.ConnectionString()); err != nil {
					return err
				}
				log.Info().Msg("migraciones revertidas")
				return nil
			}
			return postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate"))
		},
	}
	cmd.Flags().Bool("down", false, "Revertir todas las migraciones")
	return cmd
}
