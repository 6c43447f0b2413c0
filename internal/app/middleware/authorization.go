package middleware

import (
	"context"

	"stayhub/internal/app/commands"
)

// ViewerScoped is implemented by commands issued on behalf of a signed-in user.
type ViewerScoped interface {
	Viewer() string
}

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Authorization checks viewer-scoped commands before they reach validation or a
// transaction. Commands that act for nobody in particular pass straight through.
func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, scoped := cmd.(ViewerScoped); !scoped {
				return next.Dispatch(ctx, cmd)
			}
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
