package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/response"
)

const (
	// CtxAccountKey holds the authenticated *models.Account.
	CtxAccountKey = "authAccount"
	// CtxUserIDKey holds the authenticated account's user id.
	CtxUserIDKey = "userID"
)

// Auth enforces bearer-token authentication against the account store. The
// token is taken from the Authorization header, or from the access_token
// query parameter for clients that cannot set headers.
func Auth(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		account, err := accounts.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxAccountKey, account)
		c.Set(CtxUserIDKey, account.UserID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return strings.TrimSpace(c.Query("access_token"))
}
