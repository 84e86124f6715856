package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/domain"
)

// SessionLoader reads the stored operator session.
type SessionLoader interface {
	Load(ctx context.Context) (domain.Session, error)
}

const sessionUserKey = "pos.user"

// RequireSession rejects requests while no operator is logged in, pointing
// the front end at loginRoute. A session store outage lets requests through;
// the CRM still rejects a missing token with 401.
func RequireSession(sessions SessionLoader, loginRoute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.Load(c.Request.Context())
		if err != nil {
			log.Printf("session lookup failed: %v", err)
			c.Next()
			return
		}

		if !session.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "not authenticated",
				"redirect": loginRoute,
			})
			return
		}

		c.Set(sessionUserKey, session.UserName)
		c.Next()
	}
}

// SessionUser returns the operator name stored by RequireSession.
func SessionUser(c *gin.Context) string {
	return c.GetString(sessionUserKey)
}
