package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComponentStoreSetGet(t *testing.T) {
	s := newComponentStore[Transform]()
	s.Set(10, Transform{X: 1, Y: 2})

	v, ok := s.Get(10)
	require.True(t, ok)
	require.Equal(t, Transform{X: 1, Y: 2}, v)

	_, ok = s.Get(11)
	require.False(t, ok)
}

func TestComponentStoreEraseSwapsWithLast(t *testing.T) {
	s := newComponentStore[Transform]()
	s.Set(1, Transform{X: 1})
	s.Set(2, Transform{X: 2})
	s.Set(3, Transform{X: 3})

	s.erase(1)
	require.Equal(t, 2, s.Len())
	require.False(t, s.has(1))
	require.True(t, s.has(2))
	require.True(t, s.has(3))

	v, ok := s.Get(3)
	require.True(t, ok)
	require.Equal(t, Transform{X: 3}, v)
}

func TestComponentStoreEachVisitsAllDense(t *testing.T) {
	s := newComponentStore[Velocity]()
	s.Set(1, Velocity{VX: 1})
	s.Set(2, Velocity{VX: 2})

	seen := map[EntityID]float64{}
	s.Each(func(e EntityID, v Velocity) {
		seen[e] = v.VX
	})
	require.Equal(t, map[EntityID]float64{1: 1, 2: 2}, seen)
}
