package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version se inyecta con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env es opcional; las variables del sistema siguen valiendo.
	_ = godotenv.Load()

	configPath := envOr("CONFIG_PATH", "")

	root := &cobra.Command{
		Use:           "clickauth",
		Short:         "Servidor de cuentas y login social del clicker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Ruta al config.yaml (env CONFIG_PATH)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newAccountsCmd(&configPath))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
