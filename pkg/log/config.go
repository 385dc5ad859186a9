package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level       string `mapstructure:"level"`
	Pretty      bool   `mapstructure:"pretty"`
	ServiceName string `mapstructure:"service_name"`

	// Output overrides stdout. Not read from config files.
	Output io.Writer `mapstructure:"-"`
}

var (
	global zerolog.Logger
	mu     sync.RWMutex
	once   sync.Once
)

func init() {
	global = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// New creates a configured zerolog.Logger.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Output != nil {
		w = cfg.Output
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.ServiceName != "" {
		logger = logger.With().Str(FieldService, cfg.ServiceName).Logger()
	}
	return logger
}

// Init initialises the global logger. Call once at startup.
// Stdlib log output is bridged into zerolog so third-party log.Printf
// calls still come out as structured lines.
func Init(cfg Config) {
	once.Do(func() {
		Replace(New(cfg))

		stdlog.SetFlags(0)
		stdlog.SetOutput(L().With().Str("source", "stdlog").Logger())
	})
}

// Replace swaps the global logger. Tests use it to capture output.
func Replace(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
