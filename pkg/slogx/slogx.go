package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Redacted replaces the value of attributes named in Config.Redact.
const Redacted = "[redacted]"

// DefaultRedact names the attributes that carry credentials in this service.
// Tokens are logged as fingerprints under other names instead.
var DefaultRedact = []string{
	"password",
	"secret",
	"shared_secret",
	"refresh_token",
	"authorization",
	"hashextended",
}

type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // e.g. "json", "text"

	// Redact lists attribute keys (case-insensitive) whose values are never
	// written. Nil means DefaultRedact.
	Redact []string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds the process logger from cfg and installs it as slog's default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	redact := cfg.Redact
	if redact == nil {
		redact = DefaultRedact
	}

	opts := &slog.HandlerOptions{
		AddSource:   cfg.Env == "dev",
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: redactor(redact),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	slog.SetDefault(logger)
	return logger
}

// redactor returns a ReplaceAttr hook blanking the named keys at any depth.
func redactor(keys []string) func(groups []string, a slog.Attr) slog.Attr {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return func(_ []string, a slog.Attr) slog.Attr {
		if _, ok := set[strings.ToLower(a.Key)]; ok {
			return slog.String(a.Key, Redacted)
		}
		return a
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(lvl string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(lvl))); err != nil {
		if strings.EqualFold(strings.TrimSpace(lvl), "warning") {
			return slog.LevelWarn
		}
		return slog.LevelInfo
	}
	return level
}
