package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"demo_wallet/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	staticToken = "your-faux-token"
	jwtSecret   = "secret"
)

func init() { gin.SetMode(gin.TestMode) }

func gatedRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(staticToken, jwtSecret))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := TokenUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "from_token": ok})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", jwtSecret)
	require.NoError(t, err)
	forged, err := utils.GenerateJWT("user-1", "other-secret")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `"No token provided"`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `"AuthenticationError"`},
		{"wrong static token", "Bearer nope", http.StatusUnauthorized, `"Invalid token"`},
		{"static token", "Bearer " + staticToken, http.StatusOK, `"from_token":false`},
		{"login token", "Bearer " + token, http.StatusOK, `"user_id":"user-1"`},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized, `"success":false`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			gatedRouter().ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestEmptyStaticTokenNeverMatches(t *testing.T) {
	r := gin.New()
	r.Use(AuthMiddleware("", jwtSecret))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "/ok", hook.LastEntry().Data["path"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "/missing", hook.LastEntry().Data["path"])
}
