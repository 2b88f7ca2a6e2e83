package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

var std *log.Logger

// Init configures the global logger. It must be called once at process
// startup before any logging functions are used.
func Init(debug bool) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	std = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

func get() *log.Logger {
	if std == nil {
		std = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	return std
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	get().Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	get().Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	get().Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	get().Error(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	get().Fatal(message, keyvals...)
}
