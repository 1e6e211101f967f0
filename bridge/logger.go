package bridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/handle"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the bridge package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the bridge package's logger.
// This must be called before any worlds are created.
func SetLogger(l *zap.Logger) {
	logger = l
}

// handleLog reports handle lifecycle events at debug level.
type handleLog struct {
	log *zap.Logger
}

func (o handleLog) OnHandleEvent(e handle.Event) {
	o.log.Debug("handle",
		zap.Stringer("event", e.Type),
		zap.Stringer("handle", e.Handle),
		zap.Stringer("kind", e.Kind),
		zap.Stringer("owner", e.Owner),
		zap.Stringer("scope", e.Scope),
	)
}
