package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Однократно пересчитать сводки инвентаря",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.Context(), configPath)
		},
	}

	rootCmd := &cobra.Command{
		Use:          "sports-booking",
		Short:        "SMC-SportsBookingService: бронирование спортивных объектов и прокат инвентаря",
		SilenceUsage: true,
		// Без подкоманды запускается сервер
		RunE: serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "путь к файлу конфигурации")
	rootCmd.AddCommand(serveCmd, reconcileCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
