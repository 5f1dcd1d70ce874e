package actorctx

import (
	"context"

	"github.com/alamarhq/alamar/internal/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

// New creates a new context carrying the actor
func New(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// FromContext extracts the actor from the context
func FromContext(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(actorKey).(models.Actor)
	return a, ok
}
