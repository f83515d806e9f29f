// Package discordlog wraps zerolog in the shape the rest of the library
// uses: a chainable logger with domain-specific structured-event helpers
// and a process-global default instance.
package discordlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// Logger wraps a zerolog.Logger with With* chain methods and leveled
// convenience methods.
type Logger struct {
	logger zerolog.Logger
}

type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
)

// Config controls how a Logger is constructed.
type Config struct {
	Level     Level
	Pretty    bool
	Output    io.Writer
	AddSource bool
	Fields    map[string]interface{}
}

func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Pretty: true,
		Output: os.Stdout,
		Fields: make(map[string]interface{}),
	}
}

func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if config.Pretty {
		logger = log.Output(zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.Kitchen,
		})
	} else {
		logger = zerolog.New(config.Output)
	}

	switch config.Level {
	case TraceLevel:
		logger = logger.Level(zerolog.TraceLevel)
	case DebugLevel:
		logger = logger.Level(zerolog.DebugLevel)
	case InfoLevel:
		logger = logger.Level(zerolog.InfoLevel)
	case WarnLevel:
		logger = logger.Level(zerolog.WarnLevel)
	case ErrorLevel:
		logger = logger.Level(zerolog.ErrorLevel)
	case FatalLevel:
		logger = logger.Level(zerolog.FatalLevel)
	case PanicLevel:
		logger = logger.Level(zerolog.PanicLevel)
	}

	logger = logger.With().Timestamp().Logger()

	if config.AddSource {
		logger = logger.With().Caller().Logger()
	}

	if len(config.Fields) > 0 {
		logger = logger.With().Fields(config.Fields).Logger()
	}

	return &Logger{logger: logger}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", component).Logger()}
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{logger: l.logger.With().Fields(fields).Logger()}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

func (l *Logger) Trace(msg string) { l.logger.Trace().Msg(msg) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.logger.Trace().Msgf(format, args...) }
func (l *Logger) Debug(msg string) { l.logger.Debug().Msg(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logger.Debug().Msgf(format, args...) }
func (l *Logger) Info(msg string) { l.logger.Info().Msg(msg) }
func (l *Logger) Infof(format string, args ...interface{}) { l.logger.Info().Msgf(format, args...) }
func (l *Logger) Warn(msg string) { l.logger.Warn().Msg(msg) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.logger.Warn().Msgf(format, args...) }
func (l *Logger) Error(msg string) { l.logger.Error().Msg(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logger.Error().Msgf(format, args...) }
func (l *Logger) Fatal(msg string) { l.logger.Fatal().Msg(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.logger.Fatal().Msgf(format, args...) }

// LogGatewayEvent logs a gateway dispatch/opcode event with structured
// fields (event name, sequence, guild).
func (l *Logger) LogGatewayEvent(event string, fields map[string]interface{}) {
	l.logger.Debug().
		Str("event_type", "gateway").
		Str("event", event).
		Fields(fields).
		Msg("gateway event")
}

// LogVoiceEvent logs a voice-session lifecycle event (connect, discovery,
// session description, speaking toggles).
func (l *Logger) LogVoiceEvent(event string, guildID string, fields map[string]interface{}) {
	l.logger.Info().
		Str("event_type", "voice").
		Str("event", event).
		Str("guild_id", guildID).
		Fields(fields).
		Msg("voice event")
}

// LogFrame logs a single audio frame send at debug level; callers should
// sample this rather than call it for every frame in production.
func (l *Logger) LogFrame(guildID string, sequence uint16, timestamp uint32, payloadBytes int) {
	l.logger.Debug().
		Str("event_type", "frame").
		Str("guild_id", guildID).
		Uint16("sequence", sequence).
		Uint32("timestamp", timestamp).
		Int("payload_bytes", payloadBytes).
		Msg("frame sent")
}

func (l *Logger) LogConnectionEvent(event string, state model.ConnectionState, fields map[string]interface{}) {
	l.logger.Info().
		Str("event_type", "connection").
		Str("event", event).
		Str("state", string(state)).
		Fields(fields).
		Msg("connection event")
}

var global *Logger

func init() {
	global = New(DefaultConfig())
}

func Global() *Logger { return global }

func SetGlobal(l *Logger) { global = l }

func Trace(msg string) { global.Trace(msg) }
func Debug(msg string) { global.Debug(msg) }
func Info(msg string)  { global.Info(msg) }
func Warn(msg string)  { global.Warn(msg) }
func Error(msg string) { global.Error(msg) }
func Fatal(msg string) { global.Fatal(msg) }
