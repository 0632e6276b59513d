package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hideandseek/session-server/internal/registry"
)

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AvailableRooms is the REST mirror of the fetchAvailableRooms action, for
// lobby browsing without a socket.
func AvailableRooms(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reg.AvailableRooms())
	}
}
