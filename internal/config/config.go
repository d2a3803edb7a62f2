package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const EnvPrefix = "MCHUB"

type AppConfig struct {
	v *viper.Viper
}

func NewAppConfig() *AppConfig {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &AppConfig{v: v}
}

// Load reads the yaml file. A missing file is not an error, defaults and env are used then.
func (c *AppConfig) Load(filename string) (bool, error) {
	if filename == "" {
		return false, nil
	}

	c.v.SetConfigFile(filename)
	c.v.SetConfigType("yaml")

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("no config file " + filename + ", using defaults")

			return false, nil
		}

		return false, fmt.Errorf("error loading config %s: %w", filename, err)
	}

	return true, nil
}

// Watch calls fn every time the loaded config file is written.
func (c *AppConfig) Watch(fn func(c *AppConfig)) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		slog.Info("config file changed: " + e.Name)
		fn(c)
	})

	c.v.WatchConfig()
}

func (c *AppConfig) Set(key string, v any) {
	c.v.Set(key, v)
}

func (c *AppConfig) String(key string) string {
	return c.v.GetString(key)
}

func (c *AppConfig) Int(key string) int {
	return c.v.GetInt(key)
}

func (c *AppConfig) Bool(key string) bool {
	return c.v.GetBool(key)
}

func (c *AppConfig) TelemetryAddr() string {
	return c.v.GetString("telemetry.addr")
}

func (c *AppConfig) TelemetryBufferSize() int {
	return c.v.GetInt("telemetry.buffer_size")
}

func (c *AppConfig) CommandAddr() string {
	return c.v.GetString("command.addr")
}

func (c *AppConfig) CommandBufferSize() int {
	return c.v.GetInt("command.buffer_size")
}

func (c *AppConfig) CommandMaxConns() int {
	return c.v.GetInt("command.max_conns")
}

func (c *AppConfig) WebAddr() string {
	return c.v.GetString("web.addr")
}

func (c *AppConfig) EventName() string {
	return c.v.GetString("events.name")
}

func (c *AppConfig) EventQueue() int {
	return c.v.GetInt("events.queue")
}

func (c *AppConfig) EventHistory() int {
	return c.v.GetInt("events.history")
}

func (c *AppConfig) LogLevel() slog.Level {
	var l slog.Level

	if err := l.UnmarshalText([]byte(c.v.GetString("log.level"))); err != nil {
		return slog.LevelInfo
	}

	return l
}

func (c *AppConfig) LogFile() string {
	return c.v.GetString("log.file")
}

func (c *AppConfig) LogMaxSizeMB() int {
	return c.v.GetInt("log.max_size_mb")
}

func (c *AppConfig) LogMaxBackups() int {
	return c.v.GetInt("log.max_backups")
}

func (c *AppConfig) LogMaxAgeDays() int {
	return c.v.GetInt("log.max_age_days")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telemetry.addr", ":14550")
	v.SetDefault("telemetry.buffer_size", 1024)

	v.SetDefault("command.addr", ":9001")
	v.SetDefault("command.buffer_size", 1024)
	v.SetDefault("command.max_conns", 0)

	v.SetDefault("web.addr", "127.0.0.1:8080")

	v.SetDefault("events.name", "new-backend-event")
	v.SetDefault("events.queue", 100)
	v.SetDefault("events.history", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
