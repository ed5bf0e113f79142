package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTextProcessor(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{"no limit", "hello", 0, "hello"},
		{"within limit", "hello", 10, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"keeps runes whole", "héllo", 2, "h"},
		{"drops invalid bytes", "ok\xffok", 0, "okok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tp.ProcessText(tt.text, tt.maxSize))
		})
	}
}
