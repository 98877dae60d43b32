package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smokecraft/pitmaster"
)

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		debug    bool
	)

	cmd := cobra.Command{
		Use:     "pitmaster",
		Short:   "BBQ cook monitor with stall detection and finish forecasting",
		Version: version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var level slog.Level

			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))

			if debug {
				pitmaster.Logger = mqttLogger
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug the MQTT sensor transport")

	cmd.AddCommand(newCookCmd())
	cmd.AddCommand(newForecastCmd())
	cmd.AddCommand(newPlotCmd())
	cmd.AddCommand(newVersionCmd())

	return &cmd
}

func mqttLogger(level pitmaster.LogLevel, component, msg string) {
	var slogLevel slog.Level

	switch level {
	case pitmaster.LogDebug:
		slogLevel = slog.LevelDebug
	case pitmaster.LogInfo:
		slogLevel = slog.LevelInfo
	case pitmaster.LogWarn:
		slogLevel = slog.LevelWarn
	case pitmaster.LogError:
		slogLevel = slog.LevelError
	default:
		return
	}

	if component != "" {
		slog.LogAttrs(context.TODO(), slogLevel, msg, slog.String("component", component))
	} else {
		slog.LogAttrs(context.TODO(), slogLevel, msg)
	}
}
