// Package runtimer turns OS signals into an orderly shutdown: cleanup callbacks run in registration order,
// Wait blocks until the last one returned.
package runtimer

import (
	"os"
	"os/signal"
)

type CleanupFn func(s os.Signal)

func New(signals ...os.Signal) *SignalHandler {
	c := make(chan os.Signal, 1)
	signal.Notify(c, signals...)

	sh := &SignalHandler{
		c:    c,
		done: make(chan struct{}),
	}

	go sh.handle()

	return sh
}

type SignalHandler struct {
	c    chan os.Signal
	done chan struct{}
	fns  []CleanupFn
}

func (sh *SignalHandler) handle() {
	defer close(sh.done)

	s := <-sh.c
	signal.Stop(sh.c)

	for _, fn := range sh.fns {
		fn(s)
	}
}

// RegisterCallback adds a cleanup step. Not safe to call once a signal might arrive, register everything
// during startup.
func (sh *SignalHandler) RegisterCallback(fn CleanupFn) {
	sh.fns = append(sh.fns, fn)
}

// Wait blocks until a signal arrived and every registered callback has run.
func (sh *SignalHandler) Wait() {
	<-sh.done
}
