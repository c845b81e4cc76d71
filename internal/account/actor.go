package account

import "context"

// Actor is the authenticated principal attached to a request after the
// session token has been verified and resolved to a live account row.
type Actor struct {
	ID         int64
	Role       Role
	Name       string
	Email      string
	Department string
}

type ctxKey string

const actorKey ctxKey = "actor"

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFrom(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*Actor)
	return actor, ok
}
