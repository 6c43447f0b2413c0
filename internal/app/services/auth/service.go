package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stayhub/internal/app/apperr"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/uow"
	domainuser "stayhub/internal/domain/user"
)

type TokenVerifier interface {
	Compare(hash, token string) error
}

// Service resolves the viewer of a request from the viewer cookie and the CSRF token.
type Service struct {
	UoW    uow.UoWFactory
	Tokens TokenVerifier
	Logger *slog.Logger
}

// ResolveCaller returns the authenticated user or nil for anonymous requests.
// Unknown users and mismatched tokens are anonymous, not errors.
func (s *Service) ResolveCaller(ctx context.Context, viewerID, token string) (*domainuser.User, error) {
	if s.UoW == nil || s.Tokens == nil {
		return nil, errors.New("auth: service not configured")
	}
	viewerID = strings.TrimSpace(viewerID)
	token = strings.TrimSpace(token)
	if viewerID == "" || token == "" {
		return nil, nil
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoW)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	user, err := unit.Users().ByID(execCtx, domainuser.ID(viewerID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.TokenHash == "" || s.Tokens.Compare(user.TokenHash, token) != nil {
		s.logger().DebugContext(ctx, "viewer token rejected", "user_id", viewerID)
		return nil, nil
	}
	user.Authorized = true
	return user, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Authenticated is implemented by messages that need a resolved viewer.
type Authenticated interface {
	Viewer() string
}

// RequireViewer rejects authenticated messages that arrive without a viewer.
type RequireViewer struct{}

func (RequireViewer) Authorize(_ context.Context, message any) error {
	msg, ok := message.(Authenticated)
	if !ok {
		return nil
	}
	if strings.TrimSpace(msg.Viewer()) == "" {
		return apperr.Msg(apperr.Unauthorized, "auth.authorize", "viewer cannot be found")
	}
	return nil
}
