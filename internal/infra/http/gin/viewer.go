package ginserver

import (
	"context"
	"log/slog"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/services/auth"
	domainuser "stayhub/internal/domain/user"
)

const (
	ViewerCookie = "viewer"
	CSRFHeader   = "X-CSRF-TOKEN"
)

type CallerResolver interface {
	ResolveCaller(ctx context.Context, viewerID, token string) (*domainuser.User, error)
}

// ViewerMiddleware attaches the caller identified by the viewer cookie and the
// CSRF token to the request context. Unresolved callers stay anonymous.
type ViewerMiddleware struct {
	Resolver CallerResolver
	Logger   *slog.Logger
}

func (m ViewerMiddleware) Handle(c *gin.Context) {
	viewerID, _ := c.Cookie(ViewerCookie)
	token := c.GetHeader(CSRFHeader)
	if viewerID == "" || token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	user, err := m.Resolver.ResolveCaller(c.Request.Context(), viewerID, token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.WarnContext(c.Request.Context(), "viewer resolution failed", "error", err)
		}
		c.Next()
		return
	}
	if user != nil {
		c.Request = c.Request.WithContext(auth.WithViewer(c.Request.Context(), string(user.ID)))
	}
	c.Next()
}

func viewerOf(c *gin.Context) string {
	return auth.ViewerFrom(c.Request.Context())
}
