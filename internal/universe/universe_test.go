package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRemoveContains(t *testing.T) {
	s := New(8)
	assert.False(t, s.Contains(3))
	s.Add(3)
	assert.True(t, s.Contains(3))
	s.Remove(3)
	assert.False(t, s.Contains(3))
}

func TestOutOfRangeIsIgnored(t *testing.T) {
	s := New(4)
	s.Add(-1)
	s.Add(4)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(-1))
	assert.False(t, s.Contains(4))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(4)
	s.Add(1)
	clone := s.Clone()
	clone.Add(2)
	assert.True(t, clone.Contains(1))
	assert.True(t, clone.Contains(2))
	assert.False(t, s.Contains(2))
}

// TestSetLaws checks that Intersect/UnionWith/Difference agree with
// plain-map set semantics over a 200-element universe, per spec.md §8.
func TestSetLaws(t *testing.T) {
	const n = 200
	a, wantA := New(n), map[int]bool{}
	b, wantB := New(n), map[int]bool{}
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			a.Add(i)
			wantA[i] = true
		}
		if i%5 == 0 {
			b.Add(i)
			wantB[i] = true
		}
	}

	inter := a.Intersect(b)
	union := a.UnionWith(b)
	diff := a.Difference(b)

	for i := 0; i < n; i++ {
		assert.Equal(t, wantA[i] && wantB[i], inter.Contains(i), "intersect at %d", i)
		assert.Equal(t, wantA[i] || wantB[i], union.Contains(i), "union at %d", i)
		assert.Equal(t, wantA[i] && !wantB[i], diff.Contains(i), "difference at %d", i)
	}
}

func TestEqual(t *testing.T) {
	a := New(8)
	b := New(8)
	a.Add(1)
	a.Add(5)
	b.Add(5)
	b.Add(1)
	assert.True(t, a.Equal(b))
	b.Add(2)
	assert.False(t, a.Equal(b))
}
