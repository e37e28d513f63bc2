package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"cnpgdemo/shared/failure"
	"cnpgdemo/shared/validator"
)

type payload struct {
	Title string `json:"title" validate:"required,notblank,max=10"`
	Count int    `json:"count" validate:"gte=0,lte=5"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    payload
		wantErr string
	}{
		{name: "valid struct", data: payload{Title: "A", Count: 1}},
		{name: "missing required field", data: payload{Count: 1}, wantErr: "title is required"},
		{name: "blank field", data: payload{Title: "   "}, wantErr: "title must not be blank"},
		{name: "too long", data: payload{Title: "abcdefghijk"}, wantErr: "title must be at most 10 characters"},
		{name: "out of range", data: payload{Title: "A", Count: 9}, wantErr: "count must be less than or equal to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantErr)
			assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		wantErr  bool
	}{
		{name: "valid JSON", jsonBody: `{"title":"A","count":2}`},
		{name: "unknown fields are ignored", jsonBody: `{"title":"A","extra":true}`},
		{name: "invalid field", jsonBody: `{"title":"","count":2}`, wantErr: true},
		{name: "malformed JSON", jsonBody: `{"title":}`, wantErr: true},
		{name: "wrong type", jsonBody: `{"title":5}`, wantErr: true},
		{name: "empty body", jsonBody: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data payload
			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}
