package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"vrs/src/db/dbtest"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"
	"vrs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/whoami", func(ctx *gin.Context) {
		actor := Actor(ctx)
		ctx.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gdb := dbtest.Open(t)
	user := models.User{Name: "Staff", Email: "staff@example.com", Role: types.ROLE_STAFF}
	require.NoError(t, gdb.Create(&user).Error)

	r := newRouter(AuthMiddleware, RequireRoles(types.ROLE_STAFF, types.ROLE_ADMIN))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateJWT(user.ID, user.Name, user.Email, user.Role)
	require.NoError(t, err)
	w = get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"role":"staff"}`, w.Body.String())

	ghost, err := utils.GenerateJWT(99, "Ghost", "ghost@example.com", types.ROLE_ADMIN)
	require.NoError(t, err)
	w = get(r, ghost)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Setenv("JWT_SECRET", "rotated")
	w = get(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gdb := dbtest.Open(t)
	customer := models.User{Name: "Customer", Email: "customer@example.com", Role: types.ROLE_CUSTOMER}
	require.NoError(t, gdb.Create(&customer).Error)

	token, err := utils.GenerateJWT(customer.ID, customer.Name, customer.Email, customer.Role)
	require.NoError(t, err)

	w := get(newRouter(AuthMiddleware, RequireRoles(types.ROLE_STAFF)), token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(newRouter(AuthMiddleware, RequireRoles(types.ROLE_CUSTOMER)), token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecureHeaders(t *testing.T) {
	w := get(newRouter(SecureHeaders), "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, func(ctx *gin.Context) string {
		return ctx.GetHeader("X-Kiosk")
	})
	r := gin.New()
	r.GET("/ping", rl.Handler, func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	call := func(kiosk string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Kiosk", kiosk)
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, call("a"))
	assert.Equal(t, http.StatusNoContent, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusNoContent, call("b"))
}

func TestMetrics(t *testing.T) {
	before := testutil.ToFloat64(lib.HTTPRequests.WithLabelValues(http.MethodGet, "/whoami", "200"))
	get(newRouter(Metrics), "")
	after := testutil.ToFloat64(lib.HTTPRequests.WithLabelValues(http.MethodGet, "/whoami", "200"))
	assert.Equal(t, before+1, after)
}
