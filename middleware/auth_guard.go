package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/upb/inventory-api/auth"
	"github.com/upb/inventory-api/models"
	"github.com/upb/inventory-api/utils"
	"go.uber.org/zap"
)

// recordTimeout bounds how long an audit write may hold up a response
const recordTimeout = 2 * time.Second

// Authenticator turns request headers into an authentication outcome.
// *auth.Pipeline implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) auth.Outcome
}

// AuthEventRecorder persists auth decisions. repositories.AuthEventRepository implements it.
type AuthEventRecorder interface {
	Insert(ctx context.Context, event *models.AuthEvent) error
}

// AuthErrorResponse is a ready-to-send authentication failure
type AuthErrorResponse struct {
	StatusCode int
	Body       utils.AuthErrorResponse
}

// Write sends the failure unchanged
func (e *AuthErrorResponse) Write(w http.ResponseWriter) error {
	return utils.WriteAuthError(w, e.StatusCode, e.Body.Error)
}

// AuthGuard adapts authentication outcomes for request handlers
type AuthGuard struct {
	authenticator Authenticator
	recorder      AuthEventRecorder
	logger        *zap.Logger
}

// GuardOption configures an AuthGuard
type GuardOption func(*AuthGuard)

// WithAuthEventRecorder persists every decision made by RequireAuth
func WithAuthEventRecorder(recorder AuthEventRecorder) GuardOption {
	return func(g *AuthGuard) { g.recorder = recorder }
}

// NewAuthGuard creates a new AuthGuard
func NewAuthGuard(authenticator Authenticator, logger *zap.Logger, opts ...GuardOption) *AuthGuard {
	g := &AuthGuard{
		authenticator: authenticator,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate returns either the authenticated user or a failure response, never both
func (g *AuthGuard) Authenticate(r *http.Request) (*auth.UserContext, *AuthErrorResponse) {
	user, _, failure := g.authenticate(r)
	return user, failure
}

func (g *AuthGuard) authenticate(r *http.Request) (*auth.UserContext, auth.Outcome, *AuthErrorResponse) {
	outcome := g.authenticator.Authenticate(r.Context(), r.Header)
	if outcome.OK() {
		return outcome.Success.User, outcome, nil
	}

	failure := outcome.Failure
	if failure == nil {
		failure = &auth.Failure{
			StatusCode: http.StatusInternalServerError,
			Message:    auth.MessageInternal,
			Kind:       auth.KindInternal,
		}
		outcome.Failure = failure
	}

	return nil, outcome, &AuthErrorResponse{
		StatusCode: failure.StatusCode,
		Body:       utils.NewAuthErrorResponse(failure.Message),
	}
}

// RequireAuth is a middleware that rejects unauthenticated requests and
// stores the user context and access token for downstream handlers
func (g *AuthGuard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		user, outcome, failure := g.authenticate(r)
		g.record(r, outcome, failure)

		if failure != nil {
			g.logger.Warn("authentication failed",
				zap.String("request_id", requestID),
				zap.String("kind", string(outcome.Failure.Kind)),
				zap.Int("status", failure.StatusCode))
			if err := failure.Write(w); err != nil {
				g.logger.Error("failed to write auth error response", zap.Error(err))
			}
			return
		}

		ctx = WithUserContext(ctx, user)
		ctx = WithAccessToken(ctx, outcome.Success.AccessToken)

		g.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", user.UserID),
			zap.String("tenant_id", user.TenantID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// record stores the decision; failures to persist are logged and otherwise ignored
func (g *AuthGuard) record(r *http.Request, outcome auth.Outcome, failure *AuthErrorResponse) {
	if g.recorder == nil {
		return
	}

	var event *models.AuthEvent
	if failure != nil {
		event = models.NewAuthEvent(models.AuthResultFailure, failure.StatusCode).
			WithFailure(string(outcome.Failure.Kind))
	} else {
		event = models.NewAuthEvent(models.AuthResultSuccess, http.StatusOK).
			WithUser(outcome.Success.User.UserID, outcome.Success.User.TenantID)
	}
	event.WithRequest(GetRequestIDFromContext(r.Context()), r.Method, r.URL.Path, clientIP(r), r.UserAgent())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
	defer cancel()

	if err := g.recorder.Insert(ctx, event); err != nil {
		g.logger.Error("failed to record auth event",
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
}

// clientIP strips the port from RemoteAddr, which RealIP may already have replaced
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
