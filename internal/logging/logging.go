// Package logging hands out the leveled loggers used across saycheese.
package logging

import (
	"sync"

	"github.com/pion/logging"
)

var (
	mu            sync.RWMutex
	loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()
)

// NewLogger creates a logger for scope. Levels follow the PION_LOG_* environment
// variables understood by the default pion factory.
func NewLogger(scope string) logging.LeveledLogger {
	mu.RLock()
	defer mu.RUnlock()
	return loggerFactory.NewLogger(scope)
}

// SetLoggerFactory replaces the factory used by subsequent NewLogger calls.
// Loggers created earlier keep writing through the old factory.
func SetLoggerFactory(f logging.LoggerFactory) {
	if f == nil {
		return
	}

	mu.Lock()
	loggerFactory = f
	mu.Unlock()
}
