package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/stretchr/testify/assert"
)

type fakeAuth map[string]*models.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "explode" {
		return nil, errors.New("db down")
	}
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, models.ErrInvalidToken
}

func TestBearerAuth(t *testing.T) {
	alice := &models.User{ID: "alice"}
	var seen *models.User
	h := BearerAuth(fakeAuth{"good": alice})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
		user   *models.User
	}{
		{"valid token", "Bearer good", http.StatusOK, alice},
		{"lowercase scheme", "bearer good", http.StatusOK, alice},
		{"missing header", "", http.StatusUnauthorized, nil},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, nil},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, nil},
		{"lookup failure", "Bearer explode", http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.user, seen)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rec.Body.String(), `"kind":"unauthorized"`)
			}
		})
	}
}
