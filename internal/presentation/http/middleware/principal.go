package middleware

import (
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// principalKey is the gin context key carrying the authenticated principal.
const principalKey = "principal"

// SetPrincipal attaches the authenticated principal to the request context.
func SetPrincipal(c *gin.Context, p *user.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal retrieves the authenticated principal from the request
// context. The second return is false on unauthenticated requests.
func GetPrincipal(c *gin.Context) (*user.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*user.Principal)
	return principal, ok && principal != nil
}
