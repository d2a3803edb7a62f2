package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kdudkov/mchub/internal/simulator"
	"github.com/kdudkov/mchub/pkg/log"
)

func main() {
	var debug bool

	root := &cobra.Command{
		Use:   "mchub-sim",
		Short: "Telemetry and payload traffic generator for mchub",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(log.NewHandler(os.Stdout, level)))
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug output")

	root.AddCommand(telemetryCmd(), payloadCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func telemetryCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Send MAVLink-style JSON datagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("udp", addr)
			if err != nil {
				return err
			}

			defer conn.Close()

			slog.Info("sending telemetry to UDP " + addr)

			return simulator.NewDrone(nil).RunTelemetry(cmd.Context(), slog.Default(), conn, simulator.DefaultIntervals)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:14550", "telemetry UDP address")

	return cmd
}

func payloadCmd() *cobra.Command {
	var (
		addr     string
		scenario string
	)

	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Send payload events over TCP, one connection per event",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := simulator.DefaultScenario()

			if scenario != "" {
				f, err := os.Open(scenario)
				if err != nil {
					return err
				}

				defer f.Close()

				if s, err = simulator.LoadScenario(f); err != nil {
					return fmt.Errorf("%s: %w", scenario, err)
				}
			}

			slog.Info("sending payload events to TCP " + addr)

			r := &simulator.PayloadRunner{
				Logger:    slog.Default(),
				Addr:      addr,
				Scenario:  s,
				Rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
				InitDelay: time.Second * 2,
				MinDelay:  time.Second * 3,
				MaxDelay:  time.Second * 8,
			}

			return r.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9001", "command TCP address")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario yaml file, built-in one if empty")

	return cmd
}
