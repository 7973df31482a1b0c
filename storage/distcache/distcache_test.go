package distcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "alert_rules.cust-1", sanitizeKey("alert_rules:cust-1"))
	assert.Equal(t, "plain", sanitizeKey("plain"))
	assert.Equal(t, "a.b.c", sanitizeKey("a:b:c"))
}
