package item_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	otelMocks "cnpgdemo/infras/otel/mocks"
	"cnpgdemo/internal/domains/item/mocks"
	"cnpgdemo/internal/domains/item/model/dto"
	"cnpgdemo/internal/domains/item/repository"
	"cnpgdemo/internal/handlers/item"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
)

func newRouter(t *testing.T) (*mocks.MockItemService, http.Handler) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockItemService(ctrl)

	handler := item.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

var ts = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestHandler_CreateItem(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), dto.CreateItemRequest{Title: "A"}).
			Return(dto.ItemResponse{ID: 1, Title: "A", CreatedAt: ts, UpdatedAt: ts}, nil)

		rec := serve(router, http.MethodPost, "/items/", `{"title":"A"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1,"title":"A","description":null,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`, rec.Body.String())
	})

	t.Run("missing title", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPost, "/items/", `{"description":"d"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"detail":"title is required"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPost, "/items/", `{"title":`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("database failure", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.ItemResponse{}, errors.New("primary unreachable"))

		rec := serve(router, http.MethodPost, "/items/", `{"title":"A"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
	})
}

func TestHandler_GetItems(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().List(gomock.Any(), gDto.Pagination{Skip: 0, Limit: 100}).Return(dto.ItemsResponse{}, nil)

		rec := serve(router, http.MethodGet, "/items/", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("explicit paging", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().List(gomock.Any(), gDto.Pagination{Skip: 5, Limit: 2}).
			Return(dto.ItemsResponse{{ID: 6, Title: "f"}, {ID: 7, Title: "g"}}, nil)

		rec := serve(router, http.MethodGet, "/items/?skip=5&limit=2", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":6`)
	})

	t.Run("negative skip", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodGet, "/items/?skip=-1", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandler_GetItemByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Get(gomock.Any(), int64(1)).Return(dto.ItemResponse{ID: 1, Title: "A"}, nil)

		rec := serve(router, http.MethodGet, "/items/1", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Get(gomock.Any(), int64(2)).Return(dto.ItemResponse{}, repository.ErrItemNotFound)

		rec := serve(router, http.MethodGet, "/items/2", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"Item not found"}`, rec.Body.String())
	})

	t.Run("non integer id", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodGet, "/items/abc", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("replica unreachable", func(t *testing.T) {
		svc, router := newRouter(t)

		unavailable := fmt.Errorf("failed to get item: %w", failure.ServiceUnavailable("replica database unavailable"))
		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.ItemResponse{}, unavailable)

		rec := serve(router, http.MethodGet, "/items/3", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"detail":"replica database unavailable"}`, rec.Body.String())
	})
}

func TestHandler_UpdateItem(t *testing.T) {
	t.Run("partial patch", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Update(gomock.Any(), int64(1), dto.UpdateItemRequest{Description: gDto.Some("d")}).
			Return(dto.ItemResponse{ID: 1, Title: "A"}, nil)

		rec := serve(router, http.MethodPut, "/items/1", `{"description":"d"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Update(gomock.Any(), int64(9), gomock.Any()).Return(dto.ItemResponse{}, repository.ErrItemNotFound)

		rec := serve(router, http.MethodPut, "/items/9", `{"title":"B"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_DeleteItem(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)

		rec := serve(router, http.MethodDelete, "/items/1", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Item deleted successfully"}`, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Delete(gomock.Any(), int64(1)).Return(repository.ErrItemNotFound)

		rec := serve(router, http.MethodDelete, "/items/1", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
