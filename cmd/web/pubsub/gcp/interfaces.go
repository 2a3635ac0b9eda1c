package gcp

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub"
)

// Subscription is the part of *gcppubsub.Subscription the receive loop needs, split off so tests can run
// without a live project.
type Subscription interface {
	String() string
	ID() string
	Delete(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}
