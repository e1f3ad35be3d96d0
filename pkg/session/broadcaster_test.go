package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/types"
)

func TestCurrentStartsEmpty(t *testing.T) {
	b := NewBroadcaster()
	assert.Nil(t, b.Current())
}

func TestEstablishAndDestroy(t *testing.T) {
	b := NewBroadcaster()

	b.Establish(types.Session{ID: "s1", AccountID: "a1", Email: "a@b.com"})
	require.NotNil(t, b.Current())
	assert.Equal(t, "a@b.com", b.Current().Email)

	b.Destroy()
	assert.Nil(t, b.Current())
}

func TestListenersNotifiedInOrder(t *testing.T) {
	b := NewBroadcaster()

	var order []string
	b.Subscribe(func(s *types.Session) {
		order = append(order, "first")
	})
	b.Subscribe(func(s *types.Session) {
		order = append(order, "second")
	})

	b.Establish(types.Session{ID: "s1"})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	b := NewBroadcaster()
	b.Establish(types.Session{ID: "s1"})

	called := false
	b.Subscribe(func(s *types.Session) { called = true })
	assert.False(t, called, "subscription must not replay past states")

	// but the change after subscribing arrives
	b.Destroy()
	assert.True(t, called)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	calls := 0
	unsubscribe := b.Subscribe(func(s *types.Session) { calls++ })

	b.Establish(types.Session{ID: "s1"})
	unsubscribe()
	b.Destroy()

	assert.Equal(t, 1, calls)
}

func TestDestroyWhileLoggedOutIsSilent(t *testing.T) {
	b := NewBroadcaster()

	calls := 0
	b.Subscribe(func(s *types.Session) { calls++ })

	b.Destroy()
	assert.Equal(t, 0, calls)
}

func TestListenerSeesNewState(t *testing.T) {
	b := NewBroadcaster()

	var seen []*types.Session
	b.Subscribe(func(s *types.Session) { seen = append(seen, s) })

	b.Establish(types.Session{ID: "s1", Email: "a@b.com"})
	b.Establish(types.Session{ID: "s2", Email: "c@d.com"})
	b.Destroy()

	require.Len(t, seen, 3)
	assert.Equal(t, "a@b.com", seen[0].Email)
	assert.Equal(t, "c@d.com", seen[1].Email)
	assert.Nil(t, seen[2])
}
