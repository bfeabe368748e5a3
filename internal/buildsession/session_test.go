package buildsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProducesDistinctNonEmptyIDs(t *testing.T) {
	a, b := New(), New()
	assert.NotEmpty(t, a.String())
	assert.NotEmpty(t, b.String())
	assert.NotEqual(t, a, b)
}
