package api

import (
	"bytes"
	"encoding/json"
	"ledger_service/internal/config"
	"ledger_service/internal/db"
	"ledger_service/internal/domain"
	"ledger_service/internal/middleware"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/glebarez/sqlite"
)

const testSecret = "test-signing-secret"

// setupTestEnv provides an isolated in-memory store and redis for one test
func setupTestEnv(t *testing.T) (*gorm.DB, *redis.Client) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection, otherwise each pooled connection gets its own
	// in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return gdb, rdb
}

// newTestRouter builds a gin engine with the production route table
func newTestRouter(gdb *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/register", RegisterHandler(gdb, cfg))
	r.POST("/api/login", LoginHandler(gdb, cfg.JWTSecret))
	r.GET("/api/user/:id", GetUserHandler(gdb, rdb))
	r.POST("/api/user/pay", PayHandler(gdb, rdb))
	r.GET("/api/health", HealthHandler(gdb, rdb))

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AdminTokenMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(gdb))
	adminGroup.GET("/users", ListUsersHandler(gdb, rdb))
	adminGroup.GET("/search-users", SearchUsersHandler(gdb))
	adminGroup.POST("/update-balance", UpdateBalanceHandler(gdb, rdb))
	adminGroup.GET("/export-db", ExportDBHandler(gdb))
	adminGroup.GET("/transactions", ListTransactionsHandler(gdb, rdb))

	r.GET("/api/make-me-admin/:username",
		middleware.AdminTokenMiddleware(cfg.JWTSecret),
		middleware.AdminOnlyMiddleware(gdb),
		MakeAdminHandler(gdb, rdb))

	return r
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: testSecret}
}

// createTestUser inserts a user with a bcrypt-hashed password
func createTestUser(t *testing.T, gdb *gorm.DB, username, password, role string, balance float64) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{Username: username, Password: string(hash), Role: role, Balance: balance}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

// doJSON performs a request with an optional JSON body and admin token
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into dest
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
