package logger

import (
	"sync"

	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/opensearch"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
)

// InitGlobalLogger initializes the global system logger.
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	once.Do(func() {
		cfg := SystemLoggerConfig{
			EnableConsole:    true,
			EnableOpenSearch: openSearchLogger != nil,
			MinLevel:         LevelInfo,
			Service:          "nexipay",
			Version:          "1.0.0",
			Environment:      config.GetEnv("ENVIRONMENT", "development"),
		}
		if cfg.Environment == "development" {
			cfg.MinLevel = LevelDebug
		}
		globalLogger = NewSystemLogger(openSearchLogger, cfg)
	})
}

// GetGlobalLogger returns the global logger instance.
func GetGlobalLogger() *SystemLogger {
	if globalLogger == nil {
		// console-only fallback when not initialized
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       "nexipay",
			Version:       "1.0.0",
			Environment:   "development",
		})
	}
	return globalLogger
}

// Debug logs a debug message using the global logger.
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger.
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger.
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger.
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits.
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger.
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithGateway creates a context logger scoped to a gateway variant.
func WithGateway(gateway string) *ContextLogger {
	return WithContext(LogContext{Gateway: gateway})
}

// WithPayment creates a context logger scoped to a provider payment.
func WithPayment(gateway, paymentID string) *ContextLogger {
	return WithContext(LogContext{Gateway: gateway, PaymentID: paymentID})
}
