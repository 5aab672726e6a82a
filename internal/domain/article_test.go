package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupCategory(t *testing.T) {
	c, ok := LookupCategory(" Technology ")
	assert.True(t, ok)
	assert.Equal(t, CategoryTechnology, c)

	_, ok = LookupCategory("foo")
	assert.False(t, ok)

	assert.Equal(t, CategoryGeneral, ParseCategory("foo"))
	assert.Equal(t, CategorySports, ParseCategory("SPORTS"))
}
