package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/registry"
	"github.com/hideandseek/session-server/internal/ws"
)

func SetupRoutes(reg *registry.Registry, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", Health)
	r.Get("/rooms", AvailableRooms(reg))
	r.Get("/ws", ws.Handler(reg, log))
	return r
}
