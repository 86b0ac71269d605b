package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		errMsg  string
		wantErr bool
	}{
		{
			name:  "valid phone",
			phone: "12345678901",
		},
		{
			name:  "any 11 characters",
			phone: "555-123-456",
		},
		{
			name:  "11 runes, 12 bytes",
			phone: "1234567890é",
		},
		{
			name:    "too long in runes",
			phone:   "1234567890éé",
			wantErr: true,
			errMsg:  "exactly 11 characters",
		},
		{
			name:    "empty phone",
			phone:   "",
			wantErr: true,
			errMsg:  "phone cannot be empty",
		},
		{
			name:    "too short (10 chars)",
			phone:   "1234567890",
			wantErr: true,
			errMsg:  "exactly 11 characters",
		},
		{
			name:    "too long (12 chars)",
			phone:   "123456789012",
			wantErr: true,
			errMsg:  "exactly 11 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateTokenID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid id", id: "abcdefghijklmnopqrst"},
		{name: "empty", id: "", wantErr: true},
		{name: "too short", id: "abcdefghij", wantErr: true},
		{name: "too long", id: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "uppercase", id: "ABCDEFGHIJKLMNOPQRST", wantErr: true},
		{name: "digits", id: "abcdefghijklmnopqr12", wantErr: true},
		{name: "path traversal", id: "../../../etc/passwd.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTokenID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	require.NoError(t, ValidateRequired("firstName", "John"))

	err := ValidateRequired("firstName", "")
	require.Error(t, err)
	assert.Equal(t, "firstName cannot be empty", err.Error())
}
