package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/townlabs/townsync/internal/domain"
)

func TestRoomTable_JoinIsIdempotent(t *testing.T) {
	rt := NewRoomTable()
	c := &mockConn{}
	room := domain.NewRoomKey("town1", "area1")

	rt.Join(c, room)
	rt.Join(c, room)

	assert.Len(t, rt.MembersOf(room), 1)
	assert.True(t, rt.IsMember(c, room))
}

func TestRoomTable_LeaveIsIdempotent(t *testing.T) {
	rt := NewRoomTable()
	c := &mockConn{}
	room := domain.NewRoomKey("town1", "area1")

	rt.Leave(c, room) // not a member yet, no-op

	rt.Join(c, room)
	rt.Leave(c, room)
	rt.Leave(c, room)

	assert.False(t, rt.IsMember(c, room))
	assert.Empty(t, rt.MembersOf(room))
}

func TestRoomTable_MembershipIsPerRoom(t *testing.T) {
	rt := NewRoomTable()
	a, b := &mockConn{}, &mockConn{}
	room1 := domain.NewRoomKey("town1", "area1")
	room2 := domain.NewRoomKey("town1", "area2")

	rt.Join(a, room1)
	rt.Join(b, room2)

	assert.True(t, rt.IsMember(a, room1))
	assert.False(t, rt.IsMember(a, room2))
	assert.Len(t, rt.MembersOf(room1), 1)
	assert.Len(t, rt.MembersOf(room2), 1)
}

func TestRoomTable_EvictAll(t *testing.T) {
	rt := NewRoomTable()
	a, b := &mockConn{}, &mockConn{}
	room := domain.NewRoomKey("town1", "area1")

	rt.Join(a, room)
	rt.Join(b, room)
	rt.EvictAll(room)

	assert.Empty(t, rt.MembersOf(room))
	assert.False(t, rt.IsMember(a, room))
	assert.False(t, rt.IsMember(b, room))
}

func TestRoomTable_DropConn(t *testing.T) {
	rt := NewRoomTable()
	a, b := &mockConn{}, &mockConn{}
	room1 := domain.NewRoomKey("town1", "area1")
	room2 := domain.NewRoomKey("town1", "area2")

	rt.Join(a, room1)
	rt.Join(a, room2)
	rt.Join(b, room1)

	rt.DropConn(a)

	assert.False(t, rt.IsMember(a, room1))
	assert.False(t, rt.IsMember(a, room2))
	assert.True(t, rt.IsMember(b, room1))
}
