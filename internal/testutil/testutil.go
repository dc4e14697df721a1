// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop_system/internal/config"
	"shop_system/internal/db"
	"shop_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// OpenDB opens a named in-memory SQLite database and migrates the given models.
// Every test should use its own name so state does not leak between tests.
func OpenDB(t *testing.T, name string, models ...any) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1",
		IsProd:      true,
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("resolve test db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and avoids table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close(gdb) })
	if err := db.Migrate(gdb, models...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

// OpenAuthDB opens a database with the auth service tables.
func OpenAuthDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	return OpenDB(t, name, db.AuthModels()...)
}

// OpenShopDB opens a database with the shop service tables.
func OpenShopDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	return OpenDB(t, name, db.ShopModels()...)
}

// NewRedis starts a miniredis server and returns it with a connected client.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// Token returns a signed token for userID.
func Token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := utils.GenerateJWT(userID, TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// Bearer formats an Authorization header value.
func Bearer(token string) string {
	return "Bearer " + token
}

// DoJSON sends a request with an optional JSON body and Authorization header.
func DoJSON(t *testing.T, h http.Handler, method, path string, body any, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorded JSON response body into a value of type T.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}
