package dto_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnpgdemo/internal/domains/item/model"
	"cnpgdemo/internal/domains/item/model/dto"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	gModel "cnpgdemo/shared/model"
	"cnpgdemo/shared/validator"
)

func strPtr(s string) *string {
	return &s
}

func TestCreateItemRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "title only", body: `{"title":"A"}`},
		{name: "title and description", body: `{"title":"A","description":"d"}`},
		{name: "missing title", body: `{"description":"d"}`, wantErr: "title is required"},
		{name: "blank title", body: `{"title":"   "}`, wantErr: "title must not be blank"},
		{name: "too long title", body: `{"title":"` + strings.Repeat("x", 256) + `"}`, wantErr: "title must be at most 255 characters"},
		{name: "empty body", body: ``, wantErr: "request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.CreateItemRequest{}
			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestCreateItemRequest_ToModel(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	item := dto.CreateItemRequest{Title: "A"}.ToModel(now)

	assert.Equal(t, "A", item.Title)
	assert.Nil(t, item.Description)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.Equal(t, now, item.CreatedAt)
}

func TestUpdateItemRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty patch", body: `{}`},
		{name: "description only", body: `{"description":"d"}`},
		{name: "clear description", body: `{"description":null}`},
		{name: "new title", body: `{"title":"B"}`},
		{name: "null title", body: `{"title":null}`, wantErr: "title must not be null"},
		{name: "empty title", body: `{"title":""}`, wantErr: "title is required"},
		{name: "too long title", body: `{"title":"` + strings.Repeat("x", 256) + `"}`, wantErr: "title must be at most 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.UpdateItemRequest{}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestUpdateItemRequest_Apply(t *testing.T) {
	stored := model.Item{ID: 1, Title: "A", Description: strPtr("old")}

	tests := []struct {
		name     string
		req      dto.UpdateItemRequest
		expected model.Item
	}{
		{
			name:     "nothing supplied",
			req:      dto.UpdateItemRequest{},
			expected: stored,
		},
		{
			name:     "description supplied keeps title",
			req:      dto.UpdateItemRequest{Description: gDto.Some("d")},
			expected: model.Item{ID: 1, Title: "A", Description: strPtr("d")},
		},
		{
			name:     "title supplied keeps description",
			req:      dto.UpdateItemRequest{Title: gDto.Some("B")},
			expected: model.Item{ID: 1, Title: "B", Description: strPtr("old")},
		},
		{
			name:     "description cleared",
			req:      dto.UpdateItemRequest{Description: gDto.Null[string]()},
			expected: model.Item{ID: 1, Title: "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.req.Apply(stored))
		})
	}
}

func TestItemResponse_JSON(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 123456000, time.UTC)

	var res dto.ItemResponse
	res.FromModel(model.Item{ID: 1, Title: "A", Timestamps: gModel.Timestamps{CreatedAt: ts, UpdatedAt: ts}})

	body, err := json.Marshal(res)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1,
		"title": "A",
		"description": null,
		"created_at": "2024-01-01T12:00:00.123456Z",
		"updated_at": "2024-01-01T12:00:00.123456Z"
	}`, string(body))
}

func TestItemsResponse_FromModels(t *testing.T) {
	var res dto.ItemsResponse
	res.FromModels(nil)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))

	res.FromModels([]model.Item{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	require.Len(t, res, 2)
	assert.Equal(t, int64(2), res[1].ID)
}
