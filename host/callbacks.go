package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/box2d-bridge/handle"
)

// Guest exports receiving contact events during world-step.
const (
	ExportBeginContact = "box2d-begin-contact"
	ExportEndContact   = "box2d-end-contact"
	ExportPreSolve     = "box2d-pre-solve"
	ExportPostSolve    = "box2d-post-solve"
)

// guestListener forwards contact events to the stepping guest. The first
// failing callback is kept and the rest are skipped; world-step traps with
// it once the engine step has finished.
type guestListener struct {
	ctx    context.Context
	logger *zap.Logger

	begin, end, preSolve, postSolve api.Function

	err error
}

// newGuestListener returns nil when the guest exports none of the callbacks.
func newGuestListener(ctx context.Context, mod api.Module, logger *zap.Logger) *guestListener {
	l := &guestListener{
		ctx:       ctx,
		logger:    logger,
		begin:     mod.ExportedFunction(ExportBeginContact),
		end:       mod.ExportedFunction(ExportEndContact),
		preSolve:  mod.ExportedFunction(ExportPreSolve),
		postSolve: mod.ExportedFunction(ExportPostSolve),
	}
	if l.begin == nil && l.end == nil && l.preSolve == nil && l.postSolve == nil {
		return nil
	}
	return l
}

func (l *guestListener) BeginContact(contact handle.Handle) {
	l.invoke(ExportBeginContact, l.begin, uint64(contact))
}

func (l *guestListener) EndContact(contact handle.Handle) {
	l.invoke(ExportEndContact, l.end, uint64(contact))
}

func (l *guestListener) PreSolve(contact, oldManifold handle.Handle) {
	l.invoke(ExportPreSolve, l.preSolve, uint64(contact), uint64(oldManifold))
}

func (l *guestListener) PostSolve(contact, impulse handle.Handle) {
	l.invoke(ExportPostSolve, l.postSolve, uint64(contact), uint64(impulse))
}

func (l *guestListener) invoke(name string, fn api.Function, params ...uint64) {
	if fn == nil || l.err != nil {
		return
	}
	if _, err := fn.Call(l.ctx, params...); err != nil {
		l.logger.Debug("guest callback failed", zap.String("export", name), zap.Error(err))
		l.err = err
	}
}
