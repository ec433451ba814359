package pipeline

import "context"

// SignalExit requests exit once its context is done, typically a context
// created with signal.NotifyContext.
type SignalExit struct {
	ctx context.Context
}

// NewSignalExit wraps ctx.
func NewSignalExit(ctx context.Context) SignalExit {
	return SignalExit{ctx: ctx}
}

// ShouldExit reports whether the context is done.
func (s SignalExit) ShouldExit() bool {
	return s.ctx.Err() != nil
}

// AnyExit requests exit when any of its signals does. Every signal is polled
// so that signals with side effects (such as a window pumping its events) run
// on each iteration.
type AnyExit []ExitSignal

// ShouldExit polls every signal.
func (a AnyExit) ShouldExit() bool {
	exit := false
	for _, s := range a {
		if s.ShouldExit() {
			exit = true
		}
	}
	return exit
}
