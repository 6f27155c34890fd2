package favorite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"libraryapi/internal/httpx"

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

func asUser(r *http.Request, id int64) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), id))
}

func withPathID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("only caller rows", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), int64(3)).Return([]Favorite{
			{ID: 1, UserID: 3, BookID: 10},
			{ID: 4, UserID: 3, BookID: 11},
		}, nil)

		w := httptest.NewRecorder()
		handler.List(w, asUser(httptest.NewRequest(http.MethodGet, "/api/favoritebooks", nil), 3))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []favoriteResp `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, int64(11), body.Data[1].Book)
	})

	t.Run("no user in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/favoritebooks", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("other user's row is not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(3), int64(9)).Return(Favorite{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := withPathID(httptest.NewRequest(http.MethodGet, "/api/favoritebooks/9", nil), "9")
		handler.Get(w, asUser(r, 3))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("own row", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(3), int64(1)).Return(Favorite{ID: 1, UserID: 3, BookID: 10}, nil)

		w := httptest.NewRecorder()
		r := withPathID(httptest.NewRequest(http.MethodGet, "/api/favoritebooks/1", nil), "1")
		handler.Get(w, asUser(r, 3))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"book":10`)
	})
}

func TestHTTPHandler_Add(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f *Favorite) error {
			assert.Equal(t, int64(3), f.UserID)
			assert.Equal(t, int64(10), f.BookID)
			f.ID = 5
			f.CreatedAt = time.Now()
			return nil
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/favoritebooks/add", strings.NewReader(`{"book":10,"user":99}`))
		handler.Add(w, asUser(r, 3))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Book added to favorites.")
		assert.Contains(t, w.Body.String(), `"user":3`)
	})

	t.Run("unknown book", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(ErrBookNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/favoritebooks/add", strings.NewReader(`{"book":999}`))
		handler.Add(w, asUser(r, 3))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Book not found.")
	})

	t.Run("account deleted after token was issued", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(ErrUserNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/favoritebooks", strings.NewReader(`{"book":10}`))
		handler.Add(w, asUser(r, 3))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("duplicate", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(ErrAlreadyFavorited)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/favoritebooks", strings.NewReader(`{"book":10}`))
		handler.Add(w, asUser(r, 3))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Book is already in your favorites.")
	})

	t.Run("missing book", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/favoritebooks", strings.NewReader(`{}`))
		handler.Add(w, asUser(r, 3))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"book"`)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	mockRepo.EXPECT().Update(gomock.Any(), &Favorite{ID: 1, UserID: 3, BookID: 12}).Return(nil)

	w := httptest.NewRecorder()
	r := withPathID(httptest.NewRequest(http.MethodPut, "/api/favoritebooks/1", strings.NewReader(`{"book":12}`)), "1")
	handler.Update(w, asUser(r, 3))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"book":12`)
}

func TestHTTPHandler_Delete(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("no content", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(3), int64(1)).Return(nil)

		w := httptest.NewRecorder()
		r := withPathID(httptest.NewRequest(http.MethodDelete, "/api/favoritebooks/1", nil), "1")
		handler.Delete(w, asUser(r, 3))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("other user's row", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(3), int64(2)).Return(ErrNotFound)

		w := httptest.NewRecorder()
		r := withPathID(httptest.NewRequest(http.MethodDelete, "/api/favoritebooks/2", nil), "2")
		handler.Delete(w, asUser(r, 3))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Clear(t *testing.T) {
	handler, mockRepo := newTestHandler(t)
	mockRepo.EXPECT().Clear(gomock.Any(), int64(3)).Return(int64(4), nil)

	w := httptest.NewRecorder()
	handler.Clear(w, asUser(httptest.NewRequest(http.MethodPost, "/api/favoritebooks/clear", nil), 3))

	assert.Equal(t, http.StatusNoContent, w.Code)
}
