package scene_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/scene"
	"github.com/stretchr/testify/assert"
)

func TestSelection_SelectReplaces(t *testing.T) {
	l := scene.NewList()
	a := l.PushBack(leaf("a"))
	b := l.PushBack(leaf("b"))

	var s scene.Selection
	s.Select(a, false)
	s.Select(b, false)

	assert.Equal(t, b, s.Primary())
	assert.Equal(t, []*scene.Ref{b}, s.Selected())
	assert.False(t, s.Contains(a))
}

func TestSelection_ToggleKeepsPrimaryInSet(t *testing.T) {
	l := scene.NewList()
	a := l.PushBack(leaf("a"))
	b := l.PushBack(leaf("b"))
	c := l.PushBack(leaf("c"))

	var s scene.Selection
	s.Select(a, false)
	s.Select(b, true)
	s.Select(c, true)
	assert.Equal(t, c, s.Primary())
	assert.Equal(t, 3, s.Len())

	s.Select(c, true)
	assert.False(t, s.Contains(c))
	assert.Equal(t, b, s.Primary(), "primary falls back to the most recent remaining member")

	s.Select(a, true)
	s.Select(b, true)
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Primary())
}

func TestSelection_NullReference(t *testing.T) {
	l := scene.NewList()
	a := l.PushBack(leaf("a"))

	var s scene.Selection
	s.Select(a, false)
	s.Select(nil, true)
	assert.Equal(t, a, s.Primary(), "toggling the null reference is a no-op")

	s.Select(nil, false)
	assert.Nil(t, s.Primary())
	assert.Equal(t, 0, s.Len())
}

func TestSelection_PruneAndSnapshot(t *testing.T) {
	l := scene.NewList()
	a := l.PushBack(leaf("a"))
	b := l.PushBack(leaf("b"))

	var s scene.Selection
	s.Select(a, true)
	s.Select(b, true)
	snap := s.Snapshot()

	l.Remove(b)
	s.Prune((*scene.Ref).Valid)
	assert.Equal(t, []*scene.Ref{a}, s.Selected())
	assert.Equal(t, a, s.Primary())

	assert.Equal(t, []*scene.Ref{a, b}, snap.Selected(), "snapshots are independent")
	assert.Equal(t, b, snap.Primary())
}
