package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, UserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func staticValidator(userID string, err error) TokenValidator {
	return func(token string) (*Claims, error) {
		if err != nil {
			return nil, err
		}
		return &Claims{UserID: userID}, nil
	}
}

func TestAuth_ValidToken(t *testing.T) {
	h := Auth(staticValidator("user-1", nil))(okHandler(t, "user-1"))

	req := httptest.NewRequest("POST", "/api/books", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	h := Auth(staticValidator("user-1", nil))(okHandler(t, ""))

	req := httptest.NewRequest("POST", "/api/books", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	h := Auth(staticValidator("user-1", nil))(okHandler(t, ""))

	req := httptest.NewRequest("POST", "/api/books", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	h := Auth(staticValidator("", errors.New("expired")))(okHandler(t, ""))

	req := httptest.NewRequest("POST", "/api/books", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, UserIDFromContext(req.Context()))
}
