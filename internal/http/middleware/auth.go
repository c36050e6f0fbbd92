package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"commentflow.app/engine/common/logger"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/service"
)

// SessionCookieName carries the snowflake session ID.
const SessionCookieName = "commentflow_session"

const accountContextKey = "account"

// RequireAuth validates the session cookie and attaches the account to the
// request context. Requests without a valid session are rejected with 401.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		sessionID, err := strconv.ParseInt(cookie, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		account, err := authService.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			AccountID: logger.Ptr(account.ID),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(accountContextKey, account)
		c.Next()
	}
}

// Account returns the authenticated account attached by RequireAuth.
func Account(c *gin.Context) *model.Account {
	v, ok := c.Get(accountContextKey)
	if !ok {
		return nil
	}
	account, _ := v.(*model.Account)
	return account
}
