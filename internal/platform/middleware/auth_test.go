package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/pkg/requestcontext"
)

const signingKey = "test-signing-key"

func signToken(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func authedHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seenUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = requestcontext.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(NewHMACValidator(signingKey), slog.Default())(inner), &seenUser
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	h, seenUser := authedHandler(t)

	token := signToken(t, jwt.MapClaims{
		"sub":  "clerk-42",
		"role": "attendant",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, signingKey)

	req := httptest.NewRequest(http.MethodGet, "/protocols/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clerk-42", *seenUser)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	h, _ := authedHandler(t)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong key": "Bearer " + signToken(t, jwt.MapClaims{
			"sub": "clerk-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, "some-other-key"),
		"expired": "Bearer " + signToken(t, jwt.MapClaims{
			"sub": "clerk-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, signingKey),
		"no subject": "Bearer " + signToken(t, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}, signingKey),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protocols/stats", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
