package ssm

import (
	"context"
	"time"
)

// Backend operation names passed to an ObserveFunc.
const (
	OpSetup    = "setup"
	OpTeardown = "teardown"
)

// ObserveFunc receives the outcome of one backend call.
type ObserveFunc func(op string, err error, elapsed time.Duration)

type instrumented struct {
	next    Backend
	observe ObserveFunc
}

// Instrument wraps b so every call is reported to observe.
func Instrument(b Backend, observe ObserveFunc) Backend {
	if observe == nil {
		return b
	}
	return &instrumented{next: b, observe: observe}
}

func (i *instrumented) Setup(ctx context.Context, endpoint, wholeToken string) (string, error) {
	start := time.Now()
	token, err := i.next.Setup(ctx, endpoint, wholeToken)
	i.observe(OpSetup, err, time.Since(start))
	return token, err
}

func (i *instrumented) Teardown(ctx context.Context, endpoint, sessionToken string) error {
	start := time.Now()
	err := i.next.Teardown(ctx, endpoint, sessionToken)
	i.observe(OpTeardown, err, time.Since(start))
	return err
}
