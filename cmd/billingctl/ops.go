package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/application/dto"
)

func newReconcileCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Emite los recibos de pagos confirmados que quedaron sin recibo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.receipts.ReissueMissingReceipts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revisados %d, reemitidos %d\n", res.Scanned, res.Reissued)
			if len(res.Failed) > 0 {
				return fmt.Errorf("sin recibo tras el intento: %s", strings.Join(res.Failed, ", "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", dto.MaxPageLimit, "pagos a revisar por ejecución")
	return cmd
}

func newMarkOverdueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-overdue",
		Short: "Marca como vencidas las facturas con saldo y vencimiento pasado",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.invoices.MarkOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "facturas vencidas: %d\n", res.Updated)
			return nil
		},
	}
}

func newCreateUserCmd(c *cli) *cobra.Command {
	var in dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Da de alta un operador (útil para el primer admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			user, err := svc.auth.RegisterUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "usuario %s (%s) creado con id %s\n", user.Email, user.Role, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email del operador")
	cmd.Flags().StringVar(&in.Password, "password", "", "contraseña (mínimo 8 caracteres)")
	cmd.Flags().StringVar(&in.Name, "name", "", "nombre visible")
	cmd.Flags().StringVar(&in.Role, "role", "admin", "admin, cajero o consulta")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
