package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes tags the request's New Relic transaction with the
// terminal and operator. It must run after nrgin.Middleware and
// RequireSession.
func NewRelicAttributes(deviceID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if txn := nrgin.Transaction(c); txn != nil {
			txn.AddAttribute("terminal", deviceID)
			if user := SessionUser(c); user != "" {
				txn.AddAttribute("operator", user)
			}
		}
		c.Next()
	}
}
