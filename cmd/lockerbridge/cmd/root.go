// Package cmd implementa el CLI de lockerbridge.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

const serviceName = "lockerbridge"

var (
	envFile    string
	configPath string

	rootCmd = &cobra.Command{
		Use:           serviceName,
		Short:         "DigiLocker OAuth2/PKCE session broker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env es opcional; las variables del sistema siguen valiendo.
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
		},
		// Sin subcomando corre serve.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute corre el comando raíz. Sale con código 1 ante error.
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "ruta a .env (vacío = no cargar)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "ruta a config.yaml (opcional; el entorno pisa el YAML)")
}

// loadConfig carga y valida la configuración, e inicializa el logger.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Version:     cfg.App.Version,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
