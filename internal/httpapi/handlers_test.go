package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/config"
	"github.com/hideandseek/session-server/internal/gamemap"
	"github.com/hideandseek/session-server/internal/gateway"
	"github.com/hideandseek/session-server/internal/registry"
	"github.com/hideandseek/session-server/internal/timer"
	"github.com/hideandseek/session-server/pkg/protocol"
)

func testHandler(t *testing.T) (http.Handler, *registry.Registry) {
	t.Helper()
	log := zap.NewNop()
	reg := registry.New(config.Default(), gamemap.NewCatalog(), gateway.New(log), timer.NewService(), log)
	t.Cleanup(reg.Cleanup)
	return SetupRoutes(reg, log), reg
}

func TestHealth(t *testing.T) {
	handler, _ := testHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Timestamp)
}

func TestAvailableRooms(t *testing.T) {
	handler, reg := testHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []protocol.RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	assert.Empty(t, rooms)

	outbox := make(chan []byte, 8)
	_, err := reg.CreateRoom("conn-1", "alice", "fox", 4, false, "chattatamer", outbox)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "alice", rooms[0].HostName)
}
