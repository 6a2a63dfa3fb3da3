package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologAdapter writes component-tagged structured events.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger logs human-readable lines to stderr, keeping stdout free for reports.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return NewZerolog(consoleWriter, level)
}

// Wrap adapts an existing zerolog logger.
func Wrap(l zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: l}
}

// Nop discards everything.
func Nop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

// Enabled reports whether events at level would be written.
func (z *ZerologAdapter) Enabled(level zerolog.Level) bool {
	return z.logger.GetLevel() <= level && z.logger.GetLevel() != zerolog.Disabled
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	event := z.logger.Info().Str("component", component)
	z.emit(event, fields, message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	event := z.logger.Error().Str("component", component).Err(err)
	z.emit(event, fields, "operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	event := z.logger.Warn().Str("component", component)
	z.emit(event, fields, message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	event := z.logger.Debug().Str("component", component)
	z.emit(event, fields, message)
}

func (z *ZerologAdapter) emit(event *zerolog.Event, fields map[string]interface{}, message string) {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// ParseLevel maps a level name onto a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return level
}
