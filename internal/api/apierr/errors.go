package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/anagrams-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes, shared with the WebSocket error event
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodeRoomFull             = "ROOM_FULL"
	CodeNotInRoom            = "NOT_IN_ROOM"
	CodeRoundDataUnavailable = "ROUND_DATA_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusConflict, APIError{CodeNotInRoom, "Not in this room"}}
	case errors.Is(err, model.ErrRoundDataUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeRoundDataUnavailable, "Round data unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// WritePanic answers a request whose handler panicked
func WritePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	WriteError(w, NewInternalError())
}
