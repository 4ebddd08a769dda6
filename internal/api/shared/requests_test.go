package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserID string `json:"userId" validate:"required"`
	Count  int    `json:"count"  validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"userId":"u1","count":2}`},
		{name: "trailing comma", body: `{"userId":"u1",}`, wantErr: "invalid character"},
		{name: "empty body", body: "", wantErr: "EOF"},
		{name: "unknown field", body: `{"userId":"u1","extra":true}`, wantErr: "unknown field"},
		{name: "two values", body: `{"userId":"u1"}{}`, wantErr: "single JSON value"},
		{name: "too large", body: `{"userId":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, wantErr: "too large"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var got sample
			err := DecodeJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, sample{UserID: "u1", Count: 2}, got)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&sample{UserID: "u1"}))

	err := ValidateRequest(&sample{Count: -1})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
}
