package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, ttl time.Duration, secret string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authRouter() (*gin.Engine, *uint) {
	var seen uint
	r := gin.New()
	r.GET("/ping", Auth(testSecret), func(c *gin.Context) {
		seen = CallerID(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &seen
}

func getWithAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	if w := getWithAuth(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_BadScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	token := signToken(t, "42", time.Minute, testSecret)
	if w := getWithAuth(r, "Basic "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	if w := getWithAuth(r, "Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	token := signToken(t, "42", time.Minute, "other-secret")
	if w := getWithAuth(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	token := signToken(t, "42", -time.Minute, testSecret)
	if w := getWithAuth(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_NonNumericSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, _ := authRouter()
	token := signToken(t, "alice", time.Minute, testSecret)
	if w := getWithAuth(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidTokenSetsCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r, seen := authRouter()
	token := signToken(t, strconv.Itoa(42), time.Minute, testSecret)
	w := getWithAuth(r, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if *seen != 42 {
		t.Fatalf("expected caller id 42, got %d", *seen)
	}
}
