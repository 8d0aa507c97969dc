package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/infrastructure/config"
	"github.com/orris-inc/tenancy/internal/infrastructure/database"
	"github.com/orris-inc/tenancy/internal/infrastructure/migration"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/seeds"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	sharedConfig "github.com/orris-inc/tenancy/internal/shared/config"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type testApp struct {
	router    *Router
	container *Container
	tenantID  uint
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Database: sharedConfig.DatabaseConfig{
			Driver:     constants.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "tenancy.db"),
		},
		Auth:  sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{Secret: "test-secret", Issuer: "tenancy", ExpMinutes: 5}},
		Redis: sharedConfig.RedisConfig{Enabled: true, Host: mr.Host(), Port: port},
		Payment: sharedConfig.PaymentConfig{
			DefaultProvider: "manual",
			ManualPayURL:    "https://billing.example.com/pay",
		},
		Subscription: sharedConfig.SubscriptionConfig{
			ReminderDays:  []int{7},
			LockTTL:       5 * time.Second,
			LockWait:      time.Second,
			NotifyTimeout: time.Second,
		},
	}

	db, err := database.Open(&cfg.Database)
	require.NoError(t, err)
	mgr, err := migration.NewManager(constants.EnvDevelopment, constants.DriverSQLite, log)
	require.NoError(t, err)
	require.NoError(t, mgr.Migrate(db))

	c, err := NewContainer(cfg, db, log)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	defs, err := seeds.DefaultPlans()
	require.NoError(t, err)
	_, err = c.Service.SyncPlans(ctx, defs)
	require.NoError(t, err)

	acme, err := tenant.NewTenant("Acme", "ops@acme.io", time.Now())
	require.NoError(t, err)
	require.NoError(t, c.Tenants.Create(ctx, acme))

	r, err := NewRouter(c, cfg, log)
	require.NoError(t, err)
	r.SetupRoutes()

	return &testApp{router: r, container: c, tenantID: acme.ID()}
}

func (a *testApp) token(t *testing.T, userID uint, role authorization.UserRole, tenantID uint) string {
	t.Helper()
	tok, err := a.container.JWT.Generate(userID, role, tenantID)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.Engine().ServeHTTP(w, req)

	var resp map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func planIDBySlug(t *testing.T, resp map[string]any, slug string) uint {
	t.Helper()
	items := resp["data"].(map[string]any)["items"].([]any)
	for _, item := range items {
		plan := item.(map[string]any)
		if plan["slug"] == slug {
			return uint(plan["id"].(float64))
		}
	}
	t.Fatalf("plan %s not listed", slug)
	return 0
}

func TestRouter_SubscriptionLifecycle(t *testing.T) {
	app := newTestApp(t)
	tenantToken := app.token(t, 100, authorization.RoleTenant, app.tenantID)
	sellerToken := app.token(t, 200, authorization.RoleSeller, 0)
	base := fmt.Sprintf("/api/tenants/%d", app.tenantID)

	status, resp := app.do(t, http.MethodGet, "/api/plans", tenantToken, nil)
	require.Equal(t, http.StatusOK, status)
	trialID := planIDBySlug(t, resp, "trial")

	status, resp = app.do(t, http.MethodGet, base+"/subscription", tenantToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp["data"])

	status, resp = app.do(t, http.MethodPost, base+"/subscription", tenantToken, map[string]any{"plan_id": trialID})
	require.Equal(t, http.StatusOK, status, resp)
	sub := resp["data"].(map[string]any)["subscription"].(map[string]any)
	assert.Equal(t, "active", sub["status"])
	assert.Equal(t, float64(14), sub["days_remaining"])

	status, resp = app.do(t, http.MethodGet, base+"/entitlement", tenantToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), resp["data"].(map[string]any)["max_allowed"])

	// Tenants cannot extend; sellers can.
	status, _ = app.do(t, http.MethodPost, base+"/subscription/extend", tenantToken, map[string]any{"days": 10})
	assert.Equal(t, http.StatusForbidden, status)
	status, resp = app.do(t, http.MethodPost, base+"/subscription/extend", sellerToken, map[string]any{"days": 10})
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, float64(24), resp["data"].(map[string]any)["days_remaining_after"])

	status, resp = app.do(t, http.MethodDelete, base+"/subscription", tenantToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp["data"].(map[string]any)["cancelled_count"])

	status, resp = app.do(t, http.MethodGet, base+"/subscription", tenantToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp["data"])

	// The ended trial still counts as used.
	status, resp = app.do(t, http.MethodPost, base+"/subscription", tenantToken, map[string]any{"plan_id": trialID})
	assert.Equal(t, http.StatusUnprocessableEntity, status, resp)
}

func TestRouter_AccessControl(t *testing.T) {
	app := newTestApp(t)
	tenantToken := app.token(t, 100, authorization.RoleTenant, app.tenantID)
	otherTenant := fmt.Sprintf("/api/tenants/%d/subscription", app.tenantID+1)

	status, _ := app.do(t, http.MethodGet, "/api/plans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.do(t, http.MethodGet, otherTenant, tenantToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = app.do(t, http.MethodPost, "/api/payments/manual_x/confirm", tenantToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	adminToken := app.token(t, 1, authorization.RoleAdmin, 0)
	status, _ = app.do(t, http.MethodPost, "/api/payments/manual_x/confirm", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, resp := app.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", resp["status"])

	// Stripe is not configured in this setup.
	status, _ = app.do(t, http.MethodPost, "/webhooks/payments/stripe", "", map[string]any{})
	assert.Equal(t, http.StatusNotFound, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	app.router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
