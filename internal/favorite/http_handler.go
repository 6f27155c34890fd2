package favorite

import (
	"errors"
	"net/http"
	"time"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type favoriteReq struct {
	Book int64 `json:"book" validate:"required,gt=0"`
}

type favoriteResp struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Book      int64     `json:"book"`
	CreatedAt time.Time `json:"created_at"`
}

func toResp(f Favorite) favoriteResp {
	return favoriteResp{ID: f.ID, User: f.UserID, Book: f.BookID, CreatedAt: f.CreatedAt}
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := httpx.UserIDFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	}
	return userID, ok
}

func decodeFavorite(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req favoriteReq
	if !httpx.DecodeJSON(w, r, &req) {
		return 0, false
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return 0, false
	}
	return req.Book, true
}

// writeError maps service errors to responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Not found.", nil)
	case errors.Is(err, ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found.", nil)
	case errors.Is(err, ErrAlreadyFavorited):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Book is already in your favorites.", nil)
	case errors.Is(err, ErrUserNotFound):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User not found", nil)
	default:
		httpx.InternalError(w, r, err)
	}
}

// List handles GET /api/favoritebooks
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	out := make([]favoriteResp, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, toResp(f))
	}
	httpx.JSONSuccess(w, r, out, map[string]any{"total": len(out)})
}

// Get handles GET /api/favoritebooks/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	f, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(f), nil)
}

// Add handles POST /api/favoritebooks and POST /api/favoritebooks/add
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	bookID, ok := decodeFavorite(w, r)
	if !ok {
		return
	}

	f, err := h.service.Add(r.Context(), userID, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, toResp(f), map[string]any{"detail": "Book added to favorites."})
}

// Update handles PUT /api/favoritebooks/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	bookID, ok := decodeFavorite(w, r)
	if !ok {
		return
	}

	f, err := h.service.Update(r.Context(), userID, id, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(f), nil)
}

// Delete handles DELETE /api/favoritebooks/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Clear handles POST /api/favoritebooks/clear
func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Clear(r.Context(), userID); err != nil {
		httpx.InternalError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
