package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"secondhand-market/models"
	"secondhand-market/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authedRequest(t *testing.T, role string) *http.Request {
	t.Helper()
	token, err := utils.GenerateJWT("507f1f77bcf86cd799439011", "user@example.com", role)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	var gotClaims *utils.Claims
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := UserFromContext(r)
		require.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleBuyer))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "507f1f77bcf86cd799439011", gotClaims.UserID)
	assert.Equal(t, models.RoleBuyer, gotClaims.Role)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := AuthMiddleware(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r); ok {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	// anonymous requests pass through without claims
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// a valid token attaches claims
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleAdmin))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// a garbage token is ignored rather than rejected
	req := httptest.NewRequest("GET", "/products", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminMiddlewareGates(t *testing.T) {
	handler := AuthMiddleware(AdminMiddleware(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleBuyer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSellerMiddlewareGates(t *testing.T) {
	handler := AuthMiddleware(SellerMiddleware(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleSeller))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Admins pass the seller gate
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, models.RoleBuyer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
