package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	kv := []any{"stage", "contact", "attempt", 2, "reason", "user_abandoned", "stage", "bank"}

	assert.Equal(t, "bank", ExtractString(kv, "stage"))
	assert.Equal(t, "user_abandoned", ExtractString(kv, "reason"))
	assert.Empty(t, ExtractString(kv, "attempt"), "non-string values are skipped")
	assert.Empty(t, ExtractString(kv, "missing"))
	assert.Empty(t, ExtractString([]any{"dangling"}, "dangling"))
}
