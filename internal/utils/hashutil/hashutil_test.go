package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake3Hash(t *testing.T) {
	a := Blake3Hash([]byte("tabby cat"))
	b := Blake3Hash([]byte("tabby cat"))

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, Blake3Hash([]byte("tiger cat")))
}

func TestShortDigest(t *testing.T) {
	data := []byte("golden retriever")
	assert.Len(t, ShortDigest(data), 16)
	assert.Equal(t, Blake3Hash(data)[:16], ShortDigest(data))
}
