package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kdudkov/mchub/internal/command"
	"github.com/kdudkov/mchub/internal/config"
	"github.com/kdudkov/mchub/internal/event"
	"github.com/kdudkov/mchub/internal/telemetry"
	"github.com/kdudkov/mchub/pkg/log"
)

type App struct {
	logger  *slog.Logger
	cfg     *config.AppConfig
	level   *slog.LevelVar
	started time.Time

	bus       *event.Bus
	telemetry *telemetry.Listener
	command   *command.Listener
}

func NewApp(cfg *config.AppConfig, level *slog.LevelVar) *App {
	logger := slog.Default()

	bus := event.NewBus(&event.BusConfig{
		Logger:  logger,
		Name:    cfg.EventName(),
		Queue:   cfg.EventQueue(),
		History: cfg.EventHistory(),
	})

	return &App{
		logger:  logger,
		cfg:     cfg,
		level:   level,
		started: time.Now(),
		bus:     bus,
		telemetry: telemetry.NewListener(&telemetry.ListenerConfig{
			Logger:     logger,
			Addr:       cfg.TelemetryAddr(),
			BufferSize: cfg.TelemetryBufferSize(),
			Publisher:  bus,
		}),
		command: command.NewListener(&command.ListenerConfig{
			Logger:     logger,
			Addr:       cfg.CommandAddr(),
			BufferSize: cfg.CommandBufferSize(),
			MaxConns:   cfg.CommandMaxConns(),
			Publisher:  bus,
		}),
	}
}

// Run blocks until ctx is done. A listener that fails to bind is logged and the rest keep running.
func (app *App) Run(ctx context.Context) {
	wg := new(sync.WaitGroup)

	wg.Add(3)

	go func() {
		defer wg.Done()
		app.bus.Run(ctx)
	}()

	go func() {
		defer wg.Done()

		if err := app.telemetry.Listen(ctx); err != nil {
			app.logger.Error("telemetry listener error", slog.Any("error", err))
		}
	}()

	go func() {
		defer wg.Done()

		if err := app.command.Listen(ctx); err != nil {
			app.logger.Error("command listener error", slog.Any("error", err))
		}
	}()

	srv := NewHttp(app)

	go func() {
		addr := app.cfg.WebAddr()
		app.logger.Info("listening HTTP at " + addr)

		if err := srv.Listen(addr); err != nil {
			app.logger.Error("http server error", slog.Any("error", err))
		}
	}()

	app.logger.Info("mission control hub initialized")

	<-ctx.Done()

	app.logger.Info("exiting...")
	shutdownHttp(app.logger, srv)
	wg.Wait()
}

func (app *App) onConfigChange(cfg *config.AppConfig) {
	if lv := cfg.LogLevel(); lv != app.level.Level() {
		app.logger.Info("new log level " + lv.String())
		app.level.Set(lv)
	}
}

func shutdownHttp(logger *slog.Logger, srv *fiber.App) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := srv.ShutdownWithContext(ctx); err != nil {
		logger.Error("http shutdown error", slog.Any("error", err))
	}
}

func main() {
	fmt.Printf("version %s\n", getVersion())

	conf := flag.String("config", "mchub.yml", "name of config file")
	debug := flag.Bool("debug", false, "debug")
	flag.Parse()

	cfg := config.NewAppConfig()

	loaded, err := cfg.Load(*conf)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel())

	if *debug {
		level.Set(slog.LevelDebug)
	}

	w := log.NewWriter(&log.FileConfig{
		Name:       cfg.LogFile(),
		MaxSizeMB:  cfg.LogMaxSizeMB(),
		MaxBackups: cfg.LogMaxBackups(),
		MaxAgeDays: cfg.LogMaxAgeDays(),
	})

	slog.SetDefault(slog.New(log.NewHandler(w, level)))

	app := NewApp(cfg, level)

	// --debug pins the level, file changes must not lower it
	if loaded && !*debug {
		cfg.Watch(app.onConfigChange)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app.Run(ctx)
}
