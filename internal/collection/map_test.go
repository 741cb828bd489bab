package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)

	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = m.Take("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = m.Take("a")
	assert.False(t, ok)

	m.Clear()
	_, ok = m.Get("b")
	assert.False(t, ok)
}
