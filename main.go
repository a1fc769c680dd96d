package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/app"
	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/config"
	"glass-radar.klederson.com/internal/engine"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/logging"
	"glass-radar.klederson.com/internal/report"
)

var flagConfig string

func main() {
	rootCmd := &cobra.Command{
		Use:   "glass-radar",
		Short: "Glass Radar - smart glasses detector for Bluetooth Low Energy",
		Long: `Glass Radar passively listens to BLE advertisements and alerts when
camera-equipped smart glasses (Meta Ray-Ban and friends) are nearby.

Detections are written to stdout as one JSON object per line. Use --tui
for the interactive radar, --led to blink a sysfs LED.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo for demonstration mode without Bluetooth hardware.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Configuration file (YAML)")

	runFlags := bindConfig(rootCmd)
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), runFlags)
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Scan and report detections (default)",
	}
	runCmdFlags := bindConfig(runCmd)
	runCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), runCmdFlags)
	}

	rootCmd.AddCommand(runCmd, newClassifyCmd(), newDBCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindConfig gives cmd its own set of configuration flags. Keeping them in a
// separate set means command-specific flags never reach the config layers.
func bindConfig(cmd *cobra.Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	config.BindFlags(fs)
	cmd.Flags().AddFlagSet(fs)
	return fs
}

func loadConfig(fs *pflag.FlagSet) (config.Config, error) {
	return config.Load(fs, flagConfig)
}

func run(parent context.Context, fs *pflag.FlagSet) error {
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	// The monitor owns the terminal, so logs would tear the screen.
	var logOut io.Writer = os.Stderr
	if cfg.TUI {
		logOut = io.Discard
	}
	log, err := logging.Configure(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return err
	}

	db, err := fingerprint.Load(cfg.Database.Path)
	if err != nil {
		return err
	}
	log.Info().Str("database", db.Summary()).Msg("fingerprint database loaded")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(db, cfg.Engine(), time.Now(), log)
	scanner, source := newScanner(cfg, db, log)

	ind, err := newIndicator(cfg, log)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	loopCfg := app.LoopConfig{
		ScanDuration:      cfg.Scan.Duration,
		Pause:             cfg.Scan.Pause,
		StatusInterval:    cfg.Report.Status,
		HeartbeatInterval: cfg.Report.Heartbeat,
		RenderInterval:    config.RenderInterval,
		BootPulse:         config.BootPulse,
		RetryMax:          config.ScanRetryMax,
		Board:             cfg.Board,
		Version:           config.AppVersion,
	}

	log.Info().
		Str("source", source).
		Int("rssi_threshold", cfg.RSSI.Threshold).
		Bool("tier_medium", cfg.Tiers.Medium).
		Bool("tier_low", cfg.Tiers.Low).
		Dur("cooldown", cfg.Tracker.Cooldown).
		Msg(config.AppName + " starting")

	if !cfg.TUI {
		var sink report.Sink = report.NewJSONSink(os.Stdout)
		if out != nil {
			sink = report.NewJSONSink(out)
		}
		err := app.NewLoop(loopCfg, eng, scanner, sink, ind, log).Run(ctx)
		return scanError(cfg, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	monitor := app.NewMonitor(eng, source, cfg.Tracker.Capacity, cancel)
	p := tea.NewProgram(monitor, tea.WithAltScreen(), tea.WithFPS(config.TargetFPS))

	sinks := report.Multi{app.ProgramSink(p)}
	if out != nil {
		sinks = append(sinks, report.NewJSONSink(out))
	}
	loop := app.NewLoop(loopCfg, eng, scanner, sinks, ind, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Send(app.LoopDoneMsg{Err: loop.Run(ctx)})
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return err
	}
	if m, ok := final.(app.Monitor); ok {
		return scanError(cfg, m.Err())
	}
	return nil
}

func newScanner(cfg config.Config, db *fingerprint.Database, log zerolog.Logger) (app.Scanner, string) {
	if cfg.Demo {
		return bluetooth.NewDemoScanner(time.Now().UnixNano()), "demo"
	}
	uuids := make([]uint16, 0, len(db.Services))
	for _, s := range db.Services {
		uuids = append(uuids, s.UUID)
	}
	return bluetooth.NewBLEScanner(cfg.Adapter, uuids, log), cfg.Adapter
}

func newIndicator(cfg config.Config, log zerolog.Logger) (alert.Indicator, error) {
	if cfg.LED == "" {
		return alert.Nop{}, nil
	}
	led, err := alert.OpenSysfsLED(cfg.LED)
	if err != nil {
		return nil, err
	}
	log.Info().Str("led", cfg.LED).Msg("indicator attached")
	return led, nil
}

// openOutput opens the --out file for appending. It returns a nil writer
// when no file is configured.
func openOutput(cfg config.Config) (io.Writer, func(), error) {
	if cfg.Out == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func scanError(cfg config.Config, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if !cfg.Demo {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./glass-radar")
		fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./glass-radar")
		fmt.Fprintln(os.Stderr, "  ./glass-radar --demo    (demo mode, no hardware needed)")
	}
	return err
}
