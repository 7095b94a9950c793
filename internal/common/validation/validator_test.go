package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redirector/internal/common/errors"
)

type rulePayload struct {
	Path        string `json:"path" validate:"required,rule_path"`
	Host        string `json:"host" validate:"rule_host"`
	RedirectURL string `json:"redirectURL" validate:"required"`
	StatusCode  int    `json:"statusCode" validate:"omitempty,redirect_status"`
	Version     int    `json:"version" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		payload rulePayload
		wantErr string
	}{
		{
			name:    "valid",
			payload: rulePayload{Path: "/a", RedirectURL: "/b", StatusCode: 302},
		},
		{
			name:    "status omitted",
			payload: rulePayload{Path: "/a", Host: "example.com:8080", RedirectURL: "/b"},
		},
		{
			name:    "missing path",
			payload: rulePayload{RedirectURL: "/b"},
			wantErr: "field 'path' is required",
		},
		{
			name:    "status out of range",
			payload: rulePayload{Path: "/a", RedirectURL: "/b", StatusCode: 200},
			wantErr: "field 'statusCode' must be a 3xx status code",
		},
		{
			name:    "host with scheme",
			payload: rulePayload{Path: "/a", RedirectURL: "/b", Host: "https://example.com"},
			wantErr: "field 'host' must be a bare host name",
		},
		{
			name:    "path with space",
			payload: rulePayload{Path: "/a b", RedirectURL: "/b"},
			wantErr: "field 'path' must not contain whitespace",
		},
		{
			name:    "negative version",
			payload: rulePayload{Path: "/a", RedirectURL: "/b", Version: -1},
			wantErr: "field 'version' must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.payload)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStruct_ReportsEveryField(t *testing.T) {
	err := ValidateStruct(rulePayload{StatusCode: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	fields := Fields(err)
	require.Len(t, fields, 3)

	byName := map[string]FieldError{}
	for _, f := range fields {
		byName[f.Field] = f
	}
	assert.Equal(t, "required", byName["path"].Tag)
	assert.Equal(t, "required", byName["redirectURL"].Tag)
	assert.Equal(t, "redirect_status", byName["statusCode"].Tag)
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	err := ValidateStruct(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	require.Len(t, Fields(err), 1)
	assert.Equal(t, "body", Fields(err)[0].Field)
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar(301, "redirect_status"))
	assert.Error(t, ValidateVar(500, "redirect_status"))
	assert.NoError(t, ValidateVar("", "rule_host"))

	err := ValidateVar("a b", "rule_path")
	require.Error(t, err)
	assert.Equal(t, "rule_path", Fields(err)[0].Tag)
}

func TestFields_OtherErrors(t *testing.T) {
	assert.Nil(t, Fields(nil))
	assert.Nil(t, Fields(assert.AnError))
	assert.Nil(t, Fields(errors.NotFoundError("rule")))
}
