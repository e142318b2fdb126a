package dictionary

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *FileSnapshotter) {
	t.Helper()

	dir := t.TempDir()
	snapshotter := NewFileSnapshotter(
		filepath.Join(dir, "dictionary.json"),
		filepath.Join(dir, "pending.json"),
	)
	store, err := NewStore(snapshotter)
	require.NoError(t, err)
	return store, snapshotter
}

func TestNewStore_SeedsDefaultsOnFirstRun(t *testing.T) {
	store, snapshotter := newTestStore(t)

	meaning, found := store.Lookup("hello")
	assert.True(t, found)
	assert.Equal(t, "xin chào", meaning)
	assert.Equal(t, 5, store.WordCount())
	assert.Equal(t, 0, store.PendingCount())

	// The seed must have been written back to the document.
	words, err := snapshotter.LoadWords()
	require.NoError(t, err)
	assert.Len(t, words, 5)
}

func TestStore_Lookup(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name        string
		word        string
		wantMeaning string
		wantFound   bool
	}{
		{
			name:        "existing word",
			word:        "hello",
			wantMeaning: "xin chào",
			wantFound:   true,
		},
		{
			name:        "case-insensitive",
			word:        "HeLLo",
			wantMeaning: "xin chào",
			wantFound:   true,
		},
		{
			name:        "surrounding whitespace",
			word:        "  hello  ",
			wantMeaning: "xin chào",
			wantFound:   true,
		},
		{
			name:      "missing word",
			word:      "banana",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meaning, found := store.Lookup(tt.word)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantMeaning, meaning)
		})
	}
}

func TestStore_ListAll_SortedByWord(t *testing.T) {
	store, _ := newTestStore(t)

	entries := store.ListAll()
	require.Len(t, entries, 5)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Word, entries[i].Word)
	}
}

func TestStore_ProposeAdd(t *testing.T) {
	t.Run("queues a proposal without touching the dictionary", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeAdd("Banana ", "a yellow fruit", "user1")
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		_, found := store.Lookup("banana")
		assert.False(t, found)

		pending := store.ListPending()
		require.Len(t, pending, 1)
		assert.Equal(t, ProposalAdd, pending[0].Kind)
		assert.Equal(t, "banana", pending[0].Word)
		assert.Equal(t, "a yellow fruit", pending[0].Meaning)
		assert.Equal(t, "user1", pending[0].Username)
	})

	t.Run("existing word is a conflict and changes nothing", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.ProposeAdd("hello", "greeting", "user1")
		assert.ErrorIs(t, err, ErrWordExists)
		assert.Equal(t, 0, store.PendingCount())

		meaning, _ := store.Lookup("hello")
		assert.Equal(t, "xin chào", meaning)
	})

	t.Run("empty fields are rejected", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.ProposeAdd("   ", "meaning", "user1")
		assert.ErrorIs(t, err, ErrEmptyField)
		_, err = store.ProposeAdd("word", "", "user1")
		assert.ErrorIs(t, err, ErrEmptyField)
		assert.Equal(t, 0, store.PendingCount())
	})
}

func TestStore_ProposeUpdate(t *testing.T) {
	t.Run("captures the current meaning as a snapshot", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeUpdate("hello", "greeting", "user2")
		require.NoError(t, err)

		pending := store.ListPending()
		require.Len(t, pending, 1)
		assert.Equal(t, id, pending[0].ID)
		assert.Equal(t, ProposalUpdate, pending[0].Kind)
		assert.Equal(t, "xin chào", pending[0].OldMeaning)
		assert.Equal(t, "greeting", pending[0].NewMeaning)

		// The live meaning is untouched until approval.
		meaning, _ := store.Lookup("hello")
		assert.Equal(t, "xin chào", meaning)
	})

	t.Run("missing word never creates a proposal", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.ProposeUpdate("banana", "a yellow fruit", "user2")
		assert.ErrorIs(t, err, ErrWordNotFound)
		assert.Equal(t, 0, store.PendingCount())
	})
}

func TestStore_Approve(t *testing.T) {
	t.Run("add proposal inserts the word and consumes the proposal", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeAdd("banana", "a yellow fruit", "user1")
		require.NoError(t, err)

		proposal, err := store.Approve(id)
		require.NoError(t, err)
		assert.Equal(t, "banana", proposal.Word)

		meaning, found := store.Lookup("banana")
		assert.True(t, found)
		assert.Equal(t, "a yellow fruit", meaning)
		assert.Equal(t, 0, store.PendingCount())
	})

	t.Run("update proposal overwrites unconditionally", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeUpdate("hello", "greeting", "user2")
		require.NoError(t, err)

		_, err = store.Approve(id)
		require.NoError(t, err)

		meaning, _ := store.Lookup("hello")
		assert.Equal(t, "greeting", meaning)
	})

	t.Run("same id cannot be approved twice", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeAdd("banana", "a yellow fruit", "user1")
		require.NoError(t, err)

		_, err = store.Approve(id)
		require.NoError(t, err)
		_, err = store.Approve(id)
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.Approve("no-such-id")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})
}

func TestStore_Reject(t *testing.T) {
	t.Run("add proposal is discarded without dictionary changes", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeAdd("banana", "a yellow fruit", "user1")
		require.NoError(t, err)

		proposal, err := store.Reject(id)
		require.NoError(t, err)
		assert.Equal(t, "banana", proposal.Word)

		_, found := store.Lookup("banana")
		assert.False(t, found)
		assert.Equal(t, 0, store.PendingCount())
	})

	t.Run("update proposal leaves the original meaning", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.ProposeUpdate("hello", "greeting", "user2")
		require.NoError(t, err)

		_, err = store.Reject(id)
		require.NoError(t, err)

		meaning, _ := store.Lookup("hello")
		assert.Equal(t, "xin chào", meaning)
	})

	t.Run("unknown id", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.Reject("no-such-id")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})
}

func TestStore_ConcurrentProposalsAllLand(t *testing.T) {
	store, _ := newTestStore(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.ProposeAdd(fmt.Sprintf("word%03d", i), fmt.Sprintf("meaning %d", i), "user1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, store.PendingCount())

	seen := make(map[string]bool)
	for _, proposal := range store.ListPending() {
		seen[proposal.Word] = true
	}
	assert.Len(t, seen, n)
}

func TestStore_PersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	snapshotter := NewFileSnapshotter(
		filepath.Join(dir, "dictionary.json"),
		filepath.Join(dir, "pending.json"),
	)

	store, err := NewStore(snapshotter)
	require.NoError(t, err)

	addID, err := store.ProposeAdd("banana", "a yellow fruit", "user1")
	require.NoError(t, err)
	_, err = store.Approve(addID)
	require.NoError(t, err)
	_, err = store.ProposeUpdate("hello", "greeting", "user2")
	require.NoError(t, err)

	reloaded, err := NewStore(snapshotter)
	require.NoError(t, err)

	meaning, found := reloaded.Lookup("banana")
	assert.True(t, found)
	assert.Equal(t, "a yellow fruit", meaning)

	pending := reloaded.ListPending()
	require.Len(t, pending, 1)
	assert.Equal(t, ProposalUpdate, pending[0].Kind)
	assert.Equal(t, "hello", pending[0].Word)
}

func TestStore_PersistenceFailureSurfacesAsError(t *testing.T) {
	dir := t.TempDir()
	snapshotter := NewFileSnapshotter(
		filepath.Join(dir, "dictionary.json"),
		filepath.Join(dir, "pending.json"),
	)
	store, err := NewStore(snapshotter)
	require.NoError(t, err)

	// Redirect the pending document to an unwritable path.
	snapshotter.proposalsPath = filepath.Join(dir, "missing", "pending.json")

	_, err = store.ProposeAdd("banana", "a yellow fruit", "user1")
	require.Error(t, err)

	// The failed submission must not linger in memory either.
	assert.Equal(t, 0, store.PendingCount())
}

func TestNewProposalID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := newProposalID("word")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
