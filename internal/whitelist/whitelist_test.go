package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	c := NewChecker([]string{" Company.Example ", "partner.example", ""}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"alice@company.example", true},
		{"Alice <ALICE@COMPANY.EXAMPLE>", true},
		{"bob@partner.example", true},
		{"mallory@company.example.evil", false},
		{"not-an-address", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsWhitelisted(tt.from))
		})
	}
}

func TestChecker_Empty(t *testing.T) {
	assert.False(t, NewChecker(nil, nil).IsWhitelisted("alice@company.example"))
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("Name <user@Example.com>"))
	assert.Equal(t, "", Domain("user@"))
	assert.Equal(t, "", Domain("@example.com"))
}
