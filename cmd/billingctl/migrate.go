package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/infrastructure/migration"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o revierte las migraciones del esquema",
	}
	var path string
	cmd.PersistentFlags().StringVar(&path, "path", "", "directorio de migraciones (por defecto BILLING_MIGRATIONS_PATH)")

	open := func() (*migration.Migrator, error) {
		if path == "" {
			path = c.cfg.Billing.MigrationsPath
		}
		return migration.New(c.cfg.DB.ConnectionString(), path, c.log)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Up()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [pasos]",
		Short: "Revierte migraciones (por defecto 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("pasos inválidos: %q", args[0])
				}
				steps = n
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Down(steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión aplicada del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "versión %d (dirty=%t)\n", v, dirty)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <versión>",
		Short: "Fija la versión sin ejecutar SQL (recuperar un estado dirty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("versión inválida: %q", args[0])
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Force(v)
		},
	})
	return cmd
}
