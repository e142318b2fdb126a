package dictionary

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"
)

// seedWords populates the dictionary on the very first run, matching the
// document the server historically created when none existed.
var seedWords = map[string]string{
	"hello":    "xin chào",
	"world":    "thế giới",
	"python":   "ngôn ngữ lập trình Python",
	"computer": "máy tính",
	"network":  "mạng máy tính",
}

// Store owns the dictionary and the pending proposal queue. The two
// collections are guarded by independent locks so lookups proceed
// concurrently with proposal submissions. Approve is the only operation that
// holds both; every such path acquires the dictionary lock before the
// pending lock.
//
// Each mutating operation mirrors the affected collection through the
// Snapshotter before reporting success. A failed write surfaces as an error
// to the caller, never as a silent in-memory-only success.
type Store struct {
	snapshotter Snapshotter

	mu    sync.RWMutex
	words map[string]string

	pendingMu sync.RWMutex
	proposals map[string]Proposal
}

// NewStore loads both collections from the snapshotter. A missing dictionary
// document is seeded with the default words and written back; a missing
// pending document starts empty.
func NewStore(snapshotter Snapshotter) (*Store, error) {
	words, err := snapshotter.LoadWords()
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = make(map[string]string, len(seedWords))
		for word, meaning := range seedWords {
			words[word] = meaning
		}
		if err := snapshotter.SaveWords(words); err != nil {
			return nil, fmt.Errorf("seed dictionary: %w", err)
		}
	}

	proposals, err := snapshotter.LoadProposals()
	if err != nil {
		return nil, err
	}
	if proposals == nil {
		proposals = make(map[string]Proposal)
		if err := snapshotter.SaveProposals(proposals); err != nil {
			return nil, fmt.Errorf("initialize pending queue: %w", err)
		}
	}

	return &Store{
		snapshotter: snapshotter,
		words:       words,
		proposals:   proposals,
	}, nil
}

// Lookup returns the meaning for a word, case-insensitively.
func (s *Store) Lookup(word string) (string, bool) {
	word = Normalize(word)

	s.mu.RLock()
	defer s.mu.RUnlock()
	meaning, ok := s.words[word]
	return meaning, ok
}

// ListAll returns a snapshot of all entries sorted lexicographically by word.
func (s *Store) ListAll() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.words))
	for word, meaning := range s.words {
		entries = append(entries, Entry{Word: word, Meaning: meaning})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// WordCount returns the number of dictionary entries.
func (s *Store) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// PendingCount returns the number of pending proposals.
func (s *Store) PendingCount() int {
	s.pendingMu.RLock()
	defer s.pendingMu.RUnlock()
	return len(s.proposals)
}

// ProposeAdd queues an add proposal for a word that is not yet defined and
// returns the new proposal's ID.
func (s *Store) ProposeAdd(word, meaning, username string) (string, error) {
	word = Normalize(word)
	if word == "" || meaning == "" {
		return "", ErrEmptyField
	}

	s.mu.RLock()
	_, exists := s.words[word]
	s.mu.RUnlock()
	if exists {
		return "", fmt.Errorf("%w: %q", ErrWordExists, word)
	}

	proposal := Proposal{
		ID:          newProposalID(word),
		Kind:        ProposalAdd,
		Word:        word,
		Meaning:     meaning,
		Username:    username,
		SubmittedAt: time.Now(),
	}

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.proposals[proposal.ID] = proposal
	if err := s.snapshotter.SaveProposals(s.proposals); err != nil {
		delete(s.proposals, proposal.ID)
		return "", err
	}
	return proposal.ID, nil
}

// ProposeUpdate queues an update proposal for an existing word, capturing
// the current meaning as a snapshot, and returns the new proposal's ID.
func (s *Store) ProposeUpdate(word, newMeaning, username string) (string, error) {
	word = Normalize(word)
	if word == "" || newMeaning == "" {
		return "", ErrEmptyField
	}

	s.mu.RLock()
	oldMeaning, exists := s.words[word]
	s.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}

	proposal := Proposal{
		ID:          newProposalID(word),
		Kind:        ProposalUpdate,
		Word:        word,
		OldMeaning:  oldMeaning,
		NewMeaning:  newMeaning,
		Username:    username,
		SubmittedAt: time.Now(),
	}

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.proposals[proposal.ID] = proposal
	if err := s.snapshotter.SaveProposals(s.proposals); err != nil {
		delete(s.proposals, proposal.ID)
		return "", err
	}
	return proposal.ID, nil
}

// ListPending returns a snapshot of all pending proposals sorted by ID.
func (s *Store) ListPending() []Proposal {
	s.pendingMu.RLock()
	defer s.pendingMu.RUnlock()

	proposals := make([]Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		proposals = append(proposals, proposal)
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].ID < proposals[j].ID
	})
	return proposals
}

// Approve applies a proposal to the dictionary and removes it from the
// pending queue. An add proposal inserts its word; an update proposal
// overwrites the live meaning unconditionally, ignoring whether it has
// diverged from the captured snapshot. The same ID cannot be approved twice:
// the second call reports ErrProposalNotFound.
//
// Lock order is dictionary then pending, the fixed global order.
func (s *Store) Approve(id string) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return Proposal{}, fmt.Errorf("%w: %q", ErrProposalNotFound, id)
	}

	previous, hadPrevious := s.words[proposal.Word]
	switch proposal.Kind {
	case ProposalUpdate:
		s.words[proposal.Word] = proposal.NewMeaning
	default:
		s.words[proposal.Word] = proposal.Meaning
	}

	if err := s.snapshotter.SaveWords(s.words); err != nil {
		// Roll the in-memory change back so a retry starts clean.
		if hadPrevious {
			s.words[proposal.Word] = previous
		} else {
			delete(s.words, proposal.Word)
		}
		return Proposal{}, err
	}

	delete(s.proposals, id)
	if err := s.snapshotter.SaveProposals(s.proposals); err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

// Reject removes a proposal from the pending queue without touching the
// dictionary.
func (s *Store) Reject(id string) (Proposal, error) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return Proposal{}, fmt.Errorf("%w: %q", ErrProposalNotFound, id)
	}

	delete(s.proposals, id)
	if err := s.snapshotter.SaveProposals(s.proposals); err != nil {
		s.proposals[id] = proposal
		return Proposal{}, err
	}
	return proposal, nil
}

// newProposalID builds a collision-free proposal ID from the normalized word
// and a random token. The word prefix keeps IDs readable in admin listings.
func newProposalID(word string) string {
	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp rather than panic in a request path.
		return fmt.Sprintf("%s_%d", word, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%s", word, hex.EncodeToString(token))
}
