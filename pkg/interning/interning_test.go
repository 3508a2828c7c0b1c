package interning

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsStableAndRoundTrips(t *testing.T) {
	in := NewFileInterner()
	a := in.Intern("pkg/isg/graph.go")
	b := in.Intern("pkg/isg/entity.go")
	aAgain := in.Intern("pkg/isg/graph.go")

	assert.Equal(t, a, aAgain)
	assert.NotEqual(t, a, b)

	s, ok := in.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, "pkg/isg/graph.go", s)
}

func TestLookupUnknownIDNeverPanics(t *testing.T) {
	in := NewNameInterner()
	_, ok := in.Lookup(NameID(999))
	assert.False(t, ok)
}

func TestInternConcurrentSafe(t *testing.T) {
	in := NewFileInterner()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			in.Intern("shared-path")
			_ = n
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, in.Len())
}
