package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomKey_String(t *testing.T) {
	k := NewRoomKey("town1", "area1")
	assert.Equal(t, "town1#area1", k.String())
}

func TestRoomKey_StructuralEquality(t *testing.T) {
	a := NewRoomKey("town1", "area1")
	b := NewRoomKey("town1", "area1")
	c := NewRoomKey("town2", "area1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// The key must be usable directly as a map key; the same (town, area)
	// pair collapses to one entry regardless of call site.
	m := map[RoomKey]int{}
	m[a]++
	m[b]++
	m[c]++
	assert.Equal(t, 2, m[a])
	assert.Equal(t, 1, m[c])
}

func TestRoomKey_IsZero(t *testing.T) {
	assert.True(t, RoomKey{}.IsZero())
	assert.False(t, NewRoomKey("t", "a").IsZero())
}
