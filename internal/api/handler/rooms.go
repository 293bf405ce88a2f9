package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/anagrams-go/internal/api/apierr"
	"github.com/mcoot/anagrams-go/internal/api/response"
	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/session"
)

const qrSize = 320

// RoomSource provides room snapshots
type RoomSource interface {
	RoomInfo(ctx context.Context, id model.RoomID) (*session.RoomInfo, error)
}

// RoomHandler handles room inspection endpoints
type RoomHandler struct {
	rooms     RoomSource
	publicURL string
}

// NewRoomHandler creates a new room handler. An empty publicURL means join
// links are built from the incoming request.
func NewRoomHandler(rooms RoomSource, publicURL string) *RoomHandler {
	return &RoomHandler{
		rooms:     rooms,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	info, err := h.rooms.RoomInfo(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromInfo(info, h.joinURL(r, code)))
}

// QR handles GET /api/v1/rooms/{code}/qr with a PNG of the room's join link
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	code, err := roomCode(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if _, err := h.rooms.RoomInfo(r.Context(), code); err != nil {
		apierr.WriteError(w, err)
		return
	}

	png, err := qrcode.Encode(h.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	response.PNG(w, http.StatusOK, png)
}

func (h *RoomHandler) joinURL(r *http.Request, code model.RoomID) string {
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + url.QueryEscape(string(code))
}

func roomCode(r *http.Request) (model.RoomID, error) {
	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
	if code == "" {
		return "", apierr.NewInvalidRequestError("room code is required")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", apierr.NewInvalidRequestError("room code must be letters A-Z")
		}
	}
	return model.RoomID(code), nil
}
