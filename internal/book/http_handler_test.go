package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(mockRepo)), mockRepo
}

var testBook = Book{
	ID:              1,
	Title:           "Dune",
	Summary:         "Spice.",
	ISBN:            "9780441172719",
	PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
	Genre:           "Science Fiction",
	AuthorIDs:       []int64{4},
}

const validBody = `{"title":"Dune","summary":"Spice.","isbn":"9780441172719","authors":[4],"publication_date":"1965-08-01","genre":"Science Fiction"}`

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{}).Return([]Book{testBook}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []bookResp `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "1965-08-01", body.Data[0].PublicationDate)
		assert.Equal(t, []int64{4}, body.Data[0].Authors)
	})

	t.Run("filters search and ordering", func(t *testing.T) {
		published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
		want := Query{
			AuthorIDs:       []int64{4},
			Genre:           "Science Fiction",
			PublicationDate: &published,
			Search:          "herbert",
			Ordering:        []Ordering{{Field: OrderAuthorLastName, Desc: true}},
		}
		mockRepo.EXPECT().List(gomock.Any(), want).Return([]Book{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet,
			"/api/books?authors=4&genre=Science+Fiction&publication_date=1965-08-01&search=herbert&ordering=-authors__last_name", nil)
		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("repeated authors", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{AuthorIDs: []int64{4, 9}}).Return([]Book{}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books?authors=4&authors=9", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books?authors=x&publication_date=yesterday&ordering=title", nil)
		handler.List(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		for _, field := range []string{"authors", "publication_date", "ordering"} {
			assert.Contains(t, w.Body.String(), `"field":"`+field+`"`)
		}
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(testBook, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/1", nil)
		r.SetPathValue("id", "1")
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isbn":"9780441172719"`)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(2)).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/books/2", nil)
		r.SetPathValue("id", "2")
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			assert.Equal(t, "9780441172719", b.ISBN)
			assert.Equal(t, []int64{4}, b.AuthorIDs)
			b.ID = 10
			return nil
		})

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(validBody)))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":10`)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrConflict)

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(validBody)))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CONFLICT")
	})

	t.Run("unknown author", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrUnknownAuthor)

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(validBody)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"authors"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"title":"Dune"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		for _, field := range []string{"summary", "isbn", "publication_date", "genre"} {
			assert.Contains(t, w.Body.String(), `"field":"`+field+`"`)
		}
	})

	t.Run("author order and isbn kept as sent", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			b.ID = 11
			return nil
		})

		body := strings.Replace(validBody, `"authors":[4]`, `"authors":[9,4]`, 1)
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"authors":[9,4]`)
		assert.Contains(t, w.Body.String(), `"isbn":"9780441172719"`)
	})

	t.Run("duplicate authors", func(t *testing.T) {
		body := strings.Replace(validBody, `"authors":[4]`, `"authors":[4,4]`, 1)
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"authors"`)
	})

	t.Run("hyphenated isbn", func(t *testing.T) {
		body := strings.Replace(validBody, "9780441172719", "978-0-441-17271-9", 1)
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"isbn"`)
	})

	t.Run("bad isbn", func(t *testing.T) {
		body := strings.Replace(validBody, "9780441172719", "12345", 1)
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"isbn"`)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("replaced", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			assert.Equal(t, int64(1), b.ID)
			return nil
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/api/books/1", strings.NewReader(validBody))
		r.SetPathValue("id", "1")
		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/api/books/9", strings.NewReader(validBody))
		r.SetPathValue("id", "9")
		handler.Update(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	mockRepo.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/books/1", nil)
	r.SetPathValue("id", "1")
	handler.Delete(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
