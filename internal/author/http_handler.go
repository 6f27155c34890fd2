package author

import (
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type authorReq struct {
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	Biography   string `json:"biography"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	DateOfDeath string `json:"date_of_death" validate:"omitempty,datetime=2006-01-02"`
}

type authorResp struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Biography   string  `json:"biography"`
	DateOfBirth string  `json:"date_of_birth"`
	DateOfDeath *string `json:"date_of_death"`
}

func toResp(a Author) authorResp {
	return authorResp{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Biography:   a.Biography,
		DateOfBirth: httpx.FormatDate(a.DateOfBirth),
		DateOfDeath: httpx.FormatOptionalDate(a.DateOfDeath),
	}
}

// decodeAuthor reads and validates the body; on failure the response is written.
func decodeAuthor(w http.ResponseWriter, r *http.Request) (Author, bool) {
	var req authorReq
	if !httpx.DecodeJSON(w, r, &req) {
		return Author{}, false
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return Author{}, false
	}

	// Formats were checked by the validator.
	born, _ := httpx.ParseDate(req.DateOfBirth)
	died, _ := httpx.ParseOptionalDate(req.DateOfDeath)
	return Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Biography:   req.Biography,
		DateOfBirth: born,
		DateOfDeath: died,
	}, true
}

func (h *HTTPHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Author not found", nil)
	case errors.Is(err, ErrInvalidDates):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "date_of_death", Message: "date_of_death must not be before date_of_birth"},
		})
	default:
		httpx.InternalError(w, r, err)
	}
}

// List handles GET /api/authors
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.List(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]authorResp, 0, len(authors))
	for _, a := range authors {
		out = append(out, toResp(a))
	}
	httpx.JSONSuccess(w, r, out, map[string]any{"total": len(out)})
}

// Get handles GET /api/authors/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(a), nil)
}

// Create handles POST /api/authors
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := decodeAuthor(w, r)
	if !ok {
		return
	}
	if err := h.service.Create(r.Context(), &a); err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, toResp(a), nil)
}

// Update handles PUT /api/authors/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	a, ok := decodeAuthor(w, r)
	if !ok {
		return
	}
	a.ID = id
	if err := h.service.Update(r.Context(), &a); err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(a), nil)
}

// Delete handles DELETE /api/authors/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
