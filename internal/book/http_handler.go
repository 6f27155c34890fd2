package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type bookReq struct {
	Title           string  `json:"title" validate:"required,max=100"`
	Summary         string  `json:"summary" validate:"required"`
	ISBN            string  `json:"isbn" validate:"required,isbn"`
	Authors         []int64 `json:"authors" validate:"unique,dive,gt=0"`
	PublicationDate string  `json:"publication_date" validate:"required,datetime=2006-01-02"`
	Genre           string  `json:"genre" validate:"required,max=100"`
}

type bookResp struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Summary         string  `json:"summary"`
	ISBN            string  `json:"isbn"`
	Authors         []int64 `json:"authors"`
	PublicationDate string  `json:"publication_date"`
	Genre           string  `json:"genre"`
}

func toResp(b Book) bookResp {
	authors := b.AuthorIDs
	if authors == nil {
		authors = []int64{}
	}
	return bookResp{
		ID:              b.ID,
		Title:           b.Title,
		Summary:         b.Summary,
		ISBN:            b.ISBN,
		Authors:         authors,
		PublicationDate: httpx.FormatDate(b.PublicationDate),
		Genre:           b.Genre,
	}
}

func validationError(w http.ResponseWriter, r *http.Request, field, message string) {
	httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
		{Field: field, Message: message},
	})
}

func decodeBook(w http.ResponseWriter, r *http.Request) (Book, bool) {
	var req bookReq
	if !httpx.DecodeJSON(w, r, &req) {
		return Book{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Genre = strings.TrimSpace(req.Genre)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return Book{}, false
	}

	published, _ := httpx.ParseDate(req.PublicationDate)
	return Book{
		Title:           req.Title,
		Summary:         req.Summary,
		ISBN:            req.ISBN,
		PublicationDate: published,
		Genre:           req.Genre,
		AuthorIDs:       req.Authors,
	}, true
}

func (h *HTTPHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Book with this isbn already exists", []httpx.ErrorDetail{
			{Field: "isbn", Message: "book with this isbn already exists"},
		})
	case errors.Is(err, ErrUnknownAuthor):
		validationError(w, r, "authors", "one or more authors do not exist")
	case errors.Is(err, ErrInvalidOrdering):
		validationError(w, r, "ordering", err.Error())
	default:
		httpx.InternalError(w, r, err)
	}
}

// parseQuery reads ?authors=&genre=&publication_date=&search=&ordering=.
// authors may repeat; a book matches when any of its authors is listed.
func parseQuery(r *http.Request) (Query, []httpx.ErrorDetail) {
	values := r.URL.Query()
	q := Query{
		Genre:  values.Get("genre"),
		Search: strings.TrimSpace(values.Get("search")),
	}
	var details []httpx.ErrorDetail

	for _, raw := range values["authors"] {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			details = append(details, httpx.ErrorDetail{Field: "authors", Message: "authors must be a valid author id"})
			break
		}
		q.AuthorIDs = append(q.AuthorIDs, id)
	}

	if raw := values.Get("publication_date"); raw != "" {
		d, err := httpx.ParseDate(raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "publication_date", Message: "publication_date must be a date in YYYY-MM-DD format"})
		} else {
			q.PublicationDate = &d
		}
	}

	if raw := values.Get("ordering"); raw != "" {
		ordering, err := ParseOrdering(raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "ordering", Message: err.Error()})
		}
		q.Ordering = ordering
	}
	return q, details
}

// List handles GET /api/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, details := parseQuery(r)
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", details)
		return
	}

	books, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]bookResp, 0, len(books))
	for _, b := range books {
		out = append(out, toResp(b))
	}
	httpx.JSONSuccess(w, r, out, map[string]any{"total": len(out)})
}

// Get handles GET /api/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(b), nil)
}

// Create handles POST /api/books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBook(w, r)
	if !ok {
		return
	}
	if err := h.service.Create(r.Context(), &b); err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, toResp(b), nil)
}

// Update handles PUT /api/books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	b, ok := decodeBook(w, r)
	if !ok {
		return
	}
	b.ID = id
	if err := h.service.Update(r.Context(), &b); err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResp(b), nil)
}

// Delete handles DELETE /api/books/{id}
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
