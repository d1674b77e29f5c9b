package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/internal/ratelimit"
)

// HeaderOrg is rejected on API-key requests: the tenant is derived from
// the key alone, never from caller-supplied identifiers.
const HeaderOrg = "X-Org-ID"

// HeaderUser names the acting user on behalf of whom an integration
// calls per-user endpoints.
const HeaderUser = "X-User-ID"

type ActorType string

const (
	ActorAPIKey ActorType = "api_key"
	ActorUser   ActorType = "user"
)

const (
	contextAuthTypeKey     = "auth_type"
	contextAPIKeyIDKey     = "api_key_id"
	contextAPIKeyScopesKey = "api_key_scopes"
)

// APIKeyRequired authenticates requests using an API key only.
// Organization identity is derived solely from the api_keys table.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requestHasOrgID(c) {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.apiKeySvc.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		scopes := make([]string, 0, len(key.Scopes))
		scopes = append(scopes, key.Scopes...)
		ctx = context.WithValue(ctx, contextAuthTypeKey, string(ActorAPIKey))
		ctx = context.WithValue(ctx, contextAPIKeyIDKey, int64(key.ID))
		ctx = context.WithValue(ctx, contextAPIKeyScopesKey, scopes)
		ctx = orgcontext.WithOrgID(ctx, key.OrgID)

		// Integrations may declare the acting user for per-user
		// operations such as time tracking. The tenant never comes from
		// the caller, the user may.
		if raw := strings.TrimSpace(c.GetHeader(HeaderUser)); raw != "" {
			userID, err := snowflake.ParseString(raw)
			if err != nil || userID == 0 {
				AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
				return
			}
			ctx = orgcontext.WithUserID(ctx, userID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestHasOrgID(c *gin.Context) bool {
	if strings.TrimSpace(c.GetHeader(HeaderOrg)) != "" {
		return true
	}
	if value, ok := c.GetQuery("org_id"); ok && strings.TrimSpace(value) != "" {
		return true
	}
	if value, ok := c.GetQuery("orgId"); ok && strings.TrimSpace(value) != "" {
		return true
	}
	return false
}

// RequireScope narrows API keys that carry an explicit scope list. Keys
// without scopes are unrestricted.
func (s *Server) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopes, ok := c.Request.Context().Value(contextAPIKeyScopesKey).([]string)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if len(scopes) == 0 {
			c.Next()
			return
		}
		for _, granted := range scopes {
			if granted == scope {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func actorFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextAPIKeyIDKey).(int64); ok && id != 0 {
		return fmt.Sprintf("api_key:%d", id)
	}
	if userID := orgcontext.UserIDFromContext(ctx); userID != 0 {
		return fmt.Sprintf("user:%s", userID.String())
	}
	return ""
}

func (s *Server) authorizeOrgAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orgID := orgcontext.OrgIDFromContext(ctx)
		if orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := actorFromContext(ctx)
		if actor == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(ctx, actor, orgID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// CalculatorEntitlementRequired gates the estimation endpoints on the
// organization's subscription plan.
func (s *Server) CalculatorEntitlementRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orgID := orgcontext.OrgIDFromContext(ctx)
		if orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		entitled, err := s.organizationSvc.EntitledToCalculator(ctx, orgID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !entitled {
			AbortWithError(c, ErrUpgradeRequired)
			return
		}
		c.Next()
	}
}

// CalculatorRateLimit throttles estimation runs per organization. Limiter
// failures fail open: a redis outage must not take the calculator down.
func (s *Server) CalculatorRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.calculatorLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID := orgcontext.OrgIDFromContext(ctx)
		if orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		res, err := s.calculatorLimiter.Allow(ctx, orgID.String())
		if err != nil {
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(res.RetryAfter)))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
