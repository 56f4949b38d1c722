package actorcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Actor is the opaque terminal identity stamped by the HTTP layer and
// recorded on audit rows. The engine never validates it (identity is an
// external collaborator's job).
type Actor struct {
	StaffID  snowflake.ID
	Username string
	ClientIP string
}

// actorKey is an unexported type for context keys within this package.
type actorKey struct{}

// WithActor stores the acting terminal identity in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext returns the actor from context, if set.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// Username returns the audit-facing actor label, empty when anonymous.
func Username(ctx context.Context) string {
	actor, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(actor.Username)
}
