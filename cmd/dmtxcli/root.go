package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/config"
)

var (
	cfgPath  string
	logLevel string

	cfg = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "dmtxcli",
	Short: "Encode and decode ECC-200 Data Matrix symbols",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		initLogger(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	dmtx.SetLogger(logger)
}
