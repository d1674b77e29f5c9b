package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// UserContextKey is the request context key for the acting user ID.
type UserContextKey struct{}

// WithOrgID stores the org ID in the context.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, OrgContextKey{}, orgID)
}

// WithUserID stores the acting user ID in the context.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, UserContextKey{}, userID)
}

// OrgIDFromContext returns the org ID from context, zero when unset.
func OrgIDFromContext(ctx context.Context) snowflake.ID {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(OrgContextKey{}).(snowflake.ID); ok {
		return id
	}
	return 0
}

// UserIDFromContext returns the acting user ID from context, zero when unset.
func UserIDFromContext(ctx context.Context) snowflake.ID {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(UserContextKey{}).(snowflake.ID); ok {
		return id
	}
	return 0
}
