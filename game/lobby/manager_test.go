package lobby

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(5, 3, slog.New(slog.DiscardHandler))
}

func TestManagerCreate(t *testing.T) {
	m := newTestManager()

	l, err := m.Create("alice", false)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), l.ID())
	assert.Equal(t, "alice", l.OwnerID())
	assert.Equal(t, []string{"alice"}, l.Players())
	assert.False(t, l.Public())
	assert.Equal(t, 1, m.Count())

	t.Run("creator cannot be in two lobbies", func(t *testing.T) {
		_, err := m.Create("alice", false)
		assert.ErrorIs(t, err, ErrAlreadyInLobby)
	})

	t.Run("ids are unique", func(t *testing.T) {
		seen := map[string]bool{l.ID(): true}
		for i := 0; i < 50; i++ {
			other, err := m.Create(randomDigits(8), false)
			require.NoError(t, err)
			assert.False(t, seen[other.ID()])
			seen[other.ID()] = true
		}
	})
}

func TestManagerJoin(t *testing.T) {
	m := newTestManager()
	l, err := m.Create("alice", false)
	require.NoError(t, err)

	t.Run("unknown lobby", func(t *testing.T) {
		_, err := m.Join("bob", "000000")
		assert.ErrorIs(t, err, ErrLobbyNotFound)
	})

	joined, err := m.Join("bob", l.ID())
	require.NoError(t, err)
	assert.Equal(t, l, joined)
	assert.Equal(t, []string{"alice", "bob"}, l.Players())

	t.Run("full lobby", func(t *testing.T) {
		_, err := m.Join("carol", l.ID())
		assert.ErrorIs(t, err, ErrLobbyFull)
	})

	t.Run("rejoin own lobby is idempotent", func(t *testing.T) {
		_, err := m.Join("bob", l.ID())
		require.NoError(t, err)
		assert.Len(t, l.Players(), 2)
	})

	t.Run("member of another lobby rejected", func(t *testing.T) {
		other, err := m.Create("dave", false)
		require.NoError(t, err)
		_, err = m.Join("bob", other.ID())
		assert.ErrorIs(t, err, ErrAlreadyInLobby)
	})
}

func TestJoinPublicFIFO(t *testing.T) {
	m := newTestManager()

	l, err := m.JoinPublic("alice")
	require.NoError(t, err)
	assert.Nil(t, l, "first player waits")

	l, err = m.JoinPublic("bob")
	require.NoError(t, err)
	assert.Nil(t, l, "second player queues behind the first")

	t.Run("longest waiting player is paired first", func(t *testing.T) {
		matched, err := m.JoinPublic("carol")
		require.NoError(t, err)
		require.NotNil(t, matched)
		assert.True(t, matched.Public())
		assert.Equal(t, []string{"alice", "carol"}, matched.Players())
		assert.Equal(t, "alice", matched.OwnerID())
	})

	t.Run("queue keeps pairing in arrival order", func(t *testing.T) {
		matched, err := m.JoinPublic("dave")
		require.NoError(t, err)
		require.NotNil(t, matched)
		assert.Equal(t, []string{"bob", "dave"}, matched.Players())
	})
}

func TestJoinPublicSkipsStaleEntries(t *testing.T) {
	m := newTestManager()

	_, err := m.JoinPublic("alice")
	require.NoError(t, err)
	_, err = m.JoinPublic("bob")
	require.NoError(t, err)

	// Alice joins a private lobby while still queued; her queue entry must
	// be skipped and bob paired instead.
	_, err = m.Create("host", false)
	require.NoError(t, err)
	host, _ := m.LobbyOf("host")
	_, err = m.Join("alice", host.ID())
	require.NoError(t, err)

	matched, err := m.JoinPublic("carol")
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, []string{"bob", "carol"}, matched.Players())
}

func TestDropFromQueue(t *testing.T) {
	m := newTestManager()
	_, err := m.JoinPublic("alice")
	require.NoError(t, err)
	m.DropFromQueue("alice")

	l, err := m.JoinPublic("bob")
	require.NoError(t, err)
	assert.Nil(t, l, "dropped player must not be paired")
}

func TestLobbyOf(t *testing.T) {
	m := newTestManager()
	l, err := m.Create("alice", false)
	require.NoError(t, err)

	found, err := m.LobbyOf("alice")
	require.NoError(t, err)
	assert.Equal(t, l, found)

	_, err = m.LobbyOf("nobody")
	assert.ErrorIs(t, err, ErrNoLobbyForPlayer)
}

func TestLeave(t *testing.T) {
	m := newTestManager()
	l, err := m.Create("alice", false)
	require.NoError(t, err)
	_, err = m.Join("bob", l.ID())
	require.NoError(t, err)

	t.Run("remaining player inherits the lobby", func(t *testing.T) {
		left, deleted, err := m.Leave("alice", l.ID())
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, "bob", left.OwnerID())
		_, err = m.LobbyOf("alice")
		assert.ErrorIs(t, err, ErrNoLobbyForPlayer)
	})

	t.Run("empty lobby is destroyed", func(t *testing.T) {
		_, deleted, err := m.Leave("bob", l.ID())
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 0, m.Count())
		_, err = m.Get(l.ID())
		assert.ErrorIs(t, err, ErrLobbyNotFound)
	})

	t.Run("unknown lobby", func(t *testing.T) {
		_, _, err := m.Leave("alice", "000000")
		assert.ErrorIs(t, err, ErrLobbyNotFound)
	})

	t.Run("player can join again after leaving", func(t *testing.T) {
		_, err := m.Create("alice", false)
		require.NoError(t, err)
	})
}

func TestStats(t *testing.T) {
	m := newTestManager()
	l, err := m.Create("alice", false)
	require.NoError(t, err)
	_, err = m.Join("bob", l.ID())
	require.NoError(t, err)
	_, err = m.JoinPublic("carol")
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 1, stats["total_lobbies"])
	assert.Equal(t, 2, stats["total_players"])
	assert.Equal(t, 1, stats["public_queue"])
	assert.Equal(t, map[Phase]int{PhaseWaiting: 1}, stats["by_phase"])
}
