package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"giveaway-bot-backend/internal/common/config"
)

// The platform gateway resolves the caller's identity and permissions and
// forwards them in these headers. This service only evaluates the configured
// predicate; it never talks to the chat platform for role data.
const (
	headerUserID     = "X-User-ID"
	headerRoleIDs    = "X-Role-IDs"
	headerAdmin      = "X-Administrator"
	headerManageGld  = "X-Manage-Guild"
	contextKeyUserID = "user_id"
)

// Identify parses the caller headers into the request context. Requests
// without a valid user id are rejected.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader(headerUserID), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + headerUserID})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// CallerID returns the authenticated caller id, or 0 when Identify did not
// run.
func CallerID(c *gin.Context) int64 {
	if v, ok := c.Get(contextKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// RequireHostPermission gates giveaway administration. The caller passes
// when any forwarded role is in the allowed set, or when the configured
// administrator / manage-guild flags are satisfied.
func RequireHostPermission(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[int64]struct{}, len(cfg.Giveaway.AllowedRoleIDs))
	for _, id := range cfg.Giveaway.AllowedRoleIDs {
		if id > 0 {
			allowed[id] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(allowed) > 0 {
			for _, part := range strings.Split(c.GetHeader(headerRoleIDs), ",") {
				roleID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					continue
				}
				if _, ok := allowed[roleID]; ok {
					c.Next()
					return
				}
			}
		}

		if cfg.Giveaway.RequireAdmin && c.GetHeader(headerAdmin) == "true" {
			c.Next()
			return
		}
		if cfg.Giveaway.RequireManageGuild && c.GetHeader(headerManageGld) == "true" {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not have permission to manage giveaways"})
	}
}
