package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

func newAccountsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Operaciones sobre el almacenamiento de cuentas",
	}

	var out string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las cuentas (vista pública)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), *configPath, func(ctx context.Context, st storage) error {
				all, err := st.repo.ListAll(ctx)
				if err != nil {
					return err
				}
				if out == "json" {
					pub := make([]any, 0, len(all))
					for _, a := range all {
						pub = append(pub, a.Public())
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(pub)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNICKNAME\tSCORE\tPLATFORMS")
				for _, a := range all {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", a.ID, a.Profile.Nickname.Value, a.Profile.Score, a.ConnectedPlatforms())
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().StringVar(&out, "out", "text", "Formato de salida: json|text")

	var yes bool
	wipeCmd := &cobra.Command{
		Use:   "wipe",
		Short: "Borra todas las cuentas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("wipe borra todas las cuentas: confirmar con --yes")
			}
			return withStorage(cmd.Context(), *configPath, func(ctx context.Context, st storage) error {
				if err := st.repo.DeleteAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
	wipeCmd.Flags().BoolVar(&yes, "yes", false, "Confirma el borrado")

	cmd.AddCommand(listCmd, wipeCmd)
	return cmd
}

func withStorage(ctx context.Context, configPath string, fn func(context.Context, storage) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx = logger.ToContext(ctx, logger.L())

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}
