package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupValidDB cria uma conexão SQLite válida para testes
func setupValidDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	// Criar uma tabela simples para validar conexão
	_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// setupInvalidDB cria uma conexão que será fechada para simular falha
func setupInvalidDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func setupMockRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client
}

func serveReady(t *testing.T, checker *Checker, req *http.Request) (int, Report) {
	w := httptest.NewRecorder()
	checker.ReadyHandler().ServeHTTP(w, req)

	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return w.Code, report
}

func TestReadyHandler_QuandoTodosServicosDisponiveis_DeveRetornar200OK(t *testing.T) {
	checker := NewChecker(setupValidDB(t), setupMockRedis(t))

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, report.Components)
}

func TestReadyHandler_QuandoDBENil_DevePularChecagem(t *testing.T) {
	checker := NewChecker(nil, setupMockRedis(t))

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, report.Components, "database")
}

func TestReadyHandler_QuandoAmbosNulos_DeveRetornar200(t *testing.T) {
	checker := NewChecker(nil, nil)

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.Components)
}

func TestReadyHandler_QuandoDBIndisponivel_DeveRetornar503(t *testing.T) {
	db := setupInvalidDB(t)
	db.Close()

	checker := NewChecker(db, setupMockRedis(t))

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", report.Components["database"])
	assert.Equal(t, "ok", report.Components["redis"])
}

func TestReadyHandler_QuandoRedisIndisponivel_DeveRetornar503(t *testing.T) {
	redisClient := setupMockRedis(t)
	redisClient.Close()

	checker := NewChecker(setupValidDB(t), redisClient)

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "ok", report.Components["database"])
	assert.Equal(t, "unavailable", report.Components["redis"])
}

func TestReadyHandler_QuandoContextoCancelado_DeveRetornar503(t *testing.T) {
	checker := NewChecker(setupValidDB(t), setupMockRedis(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, report := serveReady(t, checker, httptest.NewRequest("GET", "/readyz", nil).WithContext(ctx))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", report.Status)
}

func TestLiveHandler_DeveRetornar200(t *testing.T) {
	w := httptest.NewRecorder()
	LiveHandler().ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
