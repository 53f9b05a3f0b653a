package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123!", h)

	assert.True(t, CheckPassword(h, "Secret123!"))
	assert.False(t, CheckPassword(h, "secret123!"))
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		name     string
		password string
		basic    bool
		strong   bool
	}{
		{name: "too short", password: "Ab1", basic: false, strong: false},
		{name: "no digit", password: "Abcdefgh", basic: false, strong: false},
		{name: "no upper", password: "abcdef1!", basic: false, strong: false},
		{name: "basic only", password: "Abc123", basic: true, strong: false},
		{name: "strong", password: "Abcdef1!", basic: true, strong: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.basic, BasicPolicy.Satisfied(tt.password))
			assert.Equal(t, tt.strong, StrongPolicy.Satisfied(tt.password))
		})
	}
}
