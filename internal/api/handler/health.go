package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/anagrams-go/internal/api/apierr"
	"github.com/mcoot/anagrams-go/internal/api/response"
	"github.com/mcoot/anagrams-go/internal/model"
)

// Connections reports live transport connections
type Connections interface {
	ConnectionCount() int
}

// RoomLister lists live rooms
type RoomLister interface {
	List(ctx context.Context) ([]model.RoomID, error)
}

// HealthHandler serves the health check
type HealthHandler struct {
	connections Connections
	rooms       RoomLister
}

// NewHealthHandler creates a health handler. Either source may be nil.
func NewHealthHandler(connections Connections, rooms RoomLister) *HealthHandler {
	return &HealthHandler{connections: connections, rooms: rooms}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok"}

	if h.connections != nil {
		resp.Connections = h.connections.ConnectionCount()
	}
	if h.rooms != nil {
		ids, err := h.rooms.List(r.Context())
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
		resp.Rooms = len(ids)
	}

	response.JSON(w, http.StatusOK, resp)
}
