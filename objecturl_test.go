package saycheese

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURLs(t *testing.T) {
	urls := NewObjectURLs()
	stream, err := NewMediaStream()
	require.NoError(t, err)

	a := urls.CreateObjectURL(stream)
	b := urls.CreateObjectURL(stream)
	assert.True(t, strings.HasPrefix(a, "blob:"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, urls.Len())

	obj, ok := urls.Resolve(a)
	require.True(t, ok)
	assert.Equal(t, stream, obj)

	urls.RevokeObjectURL(a)
	_, ok = urls.Resolve(a)
	assert.False(t, ok)
	_, ok = urls.Resolve(b)
	assert.True(t, ok)

	urls.RevokeObjectURL("blob:unknown")
	assert.Equal(t, 1, urls.Len())
}

func TestDefaultObjectURLs(t *testing.T) {
	assert.Same(t, DefaultObjectURLs(), DefaultObjectURLs())
	assert.Same(t, DefaultObjectURLs(), defaultOptions().urls)
}
