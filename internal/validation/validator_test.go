package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type playerRequest struct {
	PlayerID string  `json:"playerId" validate:"required"`
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,max=5"`
}

func TestValidate(t *testing.T) {
	long := "too long nickname"
	short := "Rex"

	tests := []struct {
		name      string
		request   playerRequest
		wantError bool
		errorMsg  string
	}{
		{
			name:    "Valid request",
			request: playerRequest{PlayerID: "abc", Nickname: &short},
		},
		{
			name:    "Nickname omitted",
			request: playerRequest{PlayerID: "abc"},
		},
		{
			name:      "Missing player id",
			request:   playerRequest{},
			wantError: true,
			errorMsg:  "playerId required",
		},
		{
			name:      "Multiple errors",
			request:   playerRequest{Nickname: &long},
			wantError: true,
			errorMsg:  "playerId required, nickname must be at most 5 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.request)
			if tt.wantError {
				assert.EqualError(t, err, tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
