package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/transport"
	"github.com/campushq/internship-portal/pkg/logger"
)

// AccountLoader resolves a token subject to a live account row so that
// revoked or suspended accounts lose access before the token expires.
type AccountLoader interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

type Middleware struct {
	tokens   *JWTTokenGenerator
	accounts AccountLoader
	transport.BaseHandler
}

func NewMiddleware(tokens *JWTTokenGenerator, accounts AccountLoader) *Middleware {
	return &Middleware{tokens: tokens, accounts: accounts}
}

// Authenticate rejects requests without a bearer token (401) and requests
// whose token fails verification or whose subject no longer has access (403).
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := m.ExtractTokenFromHeader(r)
		if tokenString == "" {
			m.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := m.tokens.Parse(tokenString)
		if err != nil {
			code := internal.ErrCodeInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = internal.ErrCodeTokenExpired
			}
			m.WriteError(w, internal.NewForbiddenError("invalid or expired token", code))
			return
		}

		acc, err := m.accounts.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if err == account.ErrNotFound {
				m.WriteError(w, internal.NewForbiddenError("account no longer exists", internal.ErrCodeAccountNotFound))
				return
			}
			m.WriteError(w, internal.NewInternalError("failed to load account", err))
			return
		}
		if acc.AccountStatus == account.StatusSuspended {
			m.WriteError(w, internal.NewForbiddenError("account is suspended", internal.ErrCodeAccountSuspended))
			return
		}

		actor := &account.Actor{
			ID:         acc.ID,
			Role:       acc.Role,
			Name:       acc.Name,
			Email:      acc.Email,
			Department: acc.Department,
		}

		ctx := account.WithActor(r.Context(), actor)
		ctx = logger.With(ctx, "user_id", actor.ID, "role", string(actor.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only the listed roles through. It must run after
// Authenticate.
func (m *Middleware) RequireRoles(roles ...account.Role) func(http.Handler) http.Handler {
	allowed := make(map[account.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := account.ActorFrom(r.Context())
			if !ok {
				m.WriteError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				m.WriteError(w, internal.NewForbiddenError("insufficient role for this resource", internal.ErrCodeInvalidRole))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
