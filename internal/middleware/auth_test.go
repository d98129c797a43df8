package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims Claims, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authedHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seenUser string
	mw := NewAuthMiddleware(testSecret, nil, []string{"/healthz"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return mw.Handler(next), &seenUser
}

func TestAuthAcceptsValidToken(t *testing.T) {
	h, seenUser := authedHandler(t)
	token := signToken(t, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if *seenUser != "u1" {
		t.Fatalf("user id not propagated, got %q", *seenUser)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	h, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	h, _ := authedHandler(t)
	token := signToken(t, Claims{UserID: "u1"}, []byte("other-secret"))

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	h, _ := authedHandler(t)
	token := signToken(t, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsTokenWithoutUserID(t *testing.T) {
	h, _ := authedHandler(t)
	token := signToken(t, Claims{}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/entities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSkipsConfiguredPaths(t *testing.T) {
	h, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected skip path to pass, got %d", rec.Code)
	}
}
