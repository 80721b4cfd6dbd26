package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-api/auth"
	"github.com/upb/inventory-api/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, header http.Header) auth.Outcome {
	args := m.Called(ctx, header)
	return args.Get(0).(auth.Outcome)
}

// MockRecorder is a mock implementation of AuthEventRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Insert(ctx context.Context, event *models.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:   "user-1",
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		TenantID: "tenant-1",
		Role:     auth.DefaultRole,
		Author:   "jane@example.com",
	}
}

func successOutcome() auth.Outcome {
	return auth.Outcome{Success: &auth.Success{User: testUser(), AccessToken: "a.b.c"}}
}

func failureOutcome(status int, message string, kind auth.FailureKind) auth.Outcome {
	return auth.Outcome{Failure: &auth.Failure{StatusCode: status, Message: message, Kind: kind}}
}

func decodeAuthError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// unsignedPipeline authenticates against a real permissive pipeline
func unsignedPipeline() *auth.Pipeline {
	return auth.NewPipeline(nil, auth.WithMode(auth.ModePermissive))
}

func TestAuthGuard_Authenticate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)

	t.Run("success returns user only", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, mock.Anything).Return(successOutcome())
		guard := NewAuthGuard(authn, zap.NewNop())

		user, failure := guard.Authenticate(req)
		require.NotNil(t, user)
		assert.Nil(t, failure)
		assert.Equal(t, "user-1", user.UserID)
		authn.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		outcome auth.Outcome
		status  int
		reason  string
	}{
		{
			name:    "missing token",
			outcome: failureOutcome(http.StatusUnauthorized, auth.MessageMissingToken, auth.KindMissingToken),
			status:  http.StatusUnauthorized,
			reason:  auth.MessageMissingToken,
		},
		{
			name:    "expired token",
			outcome: failureOutcome(http.StatusUnauthorized, auth.MessageInvalidClaims, auth.KindExpiredToken),
			status:  http.StatusUnauthorized,
			reason:  auth.MessageInvalidClaims,
		},
		{
			name:    "internal error",
			outcome: failureOutcome(http.StatusInternalServerError, auth.MessageInternal, auth.KindInternal),
			status:  http.StatusInternalServerError,
			reason:  auth.MessageInternal,
		},
		{
			name:    "empty outcome is treated as internal",
			outcome: auth.Outcome{},
			status:  http.StatusInternalServerError,
			reason:  auth.MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := new(MockAuthenticator)
			authn.On("Authenticate", mock.Anything, mock.Anything).Return(tt.outcome)
			guard := NewAuthGuard(authn, zap.NewNop())

			user, failure := guard.Authenticate(req)
			assert.Nil(t, user)
			require.NotNil(t, failure)
			assert.Equal(t, tt.status, failure.StatusCode)
			assert.False(t, failure.Body.OK)
			assert.Equal(t, tt.reason, failure.Body.Error)
			assert.Equal(t, "Authentication required", failure.Body.Message)

			w := httptest.NewRecorder()
			require.NoError(t, failure.Write(w))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			body := decodeAuthError(t, w)
			assert.Equal(t, map[string]interface{}{
				"ok":      false,
				"error":   tt.reason,
				"message": "Authentication required",
			}, body)
		})
	}
}

func TestAuthGuard_RequireAuth(t *testing.T) {
	t.Run("passes user and token downstream", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, mock.Anything).Return(successOutcome())
		guard := NewAuthGuard(authn, zaptest.NewLogger(t))

		var gotUser *auth.UserContext
		var gotToken string
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserContextFromContext(r.Context())
			gotToken = GetAccessTokenFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, "tenant-1", gotUser.TenantID)
		assert.Equal(t, "a.b.c", gotToken)
	})

	t.Run("rejects without calling next", func(t *testing.T) {
		guard := NewAuthGuard(unsignedPipeline(), zaptest.NewLogger(t))

		called := false
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeAuthError(t, w)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, auth.MessageMissingToken, body["error"])
	})

	t.Run("end to end with a permissive pipeline", func(t *testing.T) {
		guard := NewAuthGuard(unsignedPipeline(), zaptest.NewLogger(t))

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":             "user-9",
			"iss":             "https://issuer.example.com",
			"exp":             4102444800,
			"email":           "ops@example.com",
			"custom:tenantId": "tenant-9",
		}).SignedString([]byte("not-checked"))
		require.NoError(t, err)

		var gotUser *auth.UserContext
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserContextFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, "user-9", gotUser.UserID)
		assert.Equal(t, "ops@example.com", gotUser.Name)
		assert.Equal(t, auth.DefaultRole, gotUser.Role)
	})
}

func TestAuthGuard_RecordsEvents(t *testing.T) {
	t.Run("success event carries identity and request id", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, mock.Anything).Return(successOutcome())

		recorder := new(MockRecorder)
		recorder.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.AuthEvent) bool {
			return e.Result == models.AuthResultSuccess &&
				e.UserID == "user-1" &&
				e.TenantID == "tenant-1" &&
				e.RequestID == "req-42" &&
				e.IPAddress == "192.0.2.1" &&
				e.Path == "/api/v1/me"
		})).Return(nil)

		guard := NewAuthGuard(authn, zap.NewNop(), WithAuthEventRecorder(recorder))
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), chimw.RequestIDKey, "req-42"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		recorder.AssertExpectations(t)
	})

	t.Run("failure event carries kind", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, mock.Anything).
			Return(failureOutcome(http.StatusUnauthorized, auth.MessageInvalidFormat, auth.KindUndecodableToken))

		recorder := new(MockRecorder)
		recorder.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.AuthEvent) bool {
			return e.Result == models.AuthResultFailure &&
				e.FailureKind == string(auth.KindUndecodableToken) &&
				e.StatusCode == http.StatusUnauthorized &&
				e.UserID == ""
		})).Return(nil)

		guard := NewAuthGuard(authn, zap.NewNop(), WithAuthEventRecorder(recorder))
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		recorder.AssertExpectations(t)
	})

	t.Run("recorder error does not change the response", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, mock.Anything).Return(successOutcome())

		recorder := new(MockRecorder)
		recorder.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

		guard := NewAuthGuard(authn, zap.NewNop(), WithAuthEventRecorder(recorder))
		handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		recorder.AssertExpectations(t)
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUserContextFromContext(ctx))
	assert.Empty(t, GetAccessTokenFromContext(ctx))
	assert.Empty(t, GetRequestIDFromContext(ctx))

	user := testUser()
	ctx = WithUserContext(ctx, user)
	ctx = WithAccessToken(ctx, "x.y.z")
	assert.Same(t, user, GetUserContextFromContext(ctx))
	assert.Equal(t, "x.y.z", GetAccessTokenFromContext(ctx))
}
