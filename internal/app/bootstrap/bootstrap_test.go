package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/store/docstore/mongostore"
	"github.com/dalemusser/studyhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func devAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "studyhub_test",
		SessionKey:    "test-session-key-must-be-32-chars-long",
		SessionName:   "studyhub-session",
		BaseURL:       "http://localhost:3000",
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	appCfg := devAppConfig()
	appCfg.MongoURI = "not-a-mongo-uri"

	err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, testLogger())
	if err == nil {
		t.Error("expected error for invalid MongoDB URI")
	}
}

func TestValidateConfig_RejectsDefaultSessionKeyInProd(t *testing.T) {
	appCfg := devAppConfig()
	appCfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, testLogger()); err != nil {
		t.Errorf("dev config rejected: %v", err)
	}
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, appCfg, testLogger()); err == nil {
		t.Error("expected error for default session key in prod")
	}
}

func TestEnsureSchemaAndBuildHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := devAppConfig()
	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Store:         mongostore.New(db, testLogger()),
	}

	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	handler, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	// The health endpoint answers against the live connection.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, body %s", rec.Code, rec.Body.String())
	}

	// API routes require a session.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Accept", "application/json")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/tasks status = %d, want 401", rec.Code)
	}
}
