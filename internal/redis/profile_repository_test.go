package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "profile:id:12345", profileKey("12345"))
	assert.Equal(t, "profile:login:shroud", loginKey("shroud"))
	assert.Equal(t, "profile:login:shroud", loginKey("SHROUD"),
		"login keys are case-folded")
}
