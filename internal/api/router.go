package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/anagrams-go/internal/api/apierr"
	"github.com/mcoot/anagrams-go/internal/api/handler"
	"github.com/mcoot/anagrams-go/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Rooms       handler.RoomSource
	RoomLister  handler.RoomLister
	Connections handler.Connections
	Realtime    http.Handler // Serves /ws; omitted when nil
	PublicURL   string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.PublicURL)
	healthHandler := handler.NewHealthHandler(cfg.Connections, cfg.RoomLister)

	loggingMiddleware := middleware.Logging(cfg.Logger)

	// The socket route wraps recovery inside logging so a panic after the
	// upgrade can see the hijacked writer
	if cfg.Realtime != nil {
		ws := middleware.Recovery(cfg.Logger, middleware.UpgradePanicHandler)(cfg.Realtime)
		r.Handle("/ws", loggingMiddleware(ws)).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, apierr.WritePanic))
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/qr", roomHandler.QR).Methods(http.MethodGet)

	return r
}
