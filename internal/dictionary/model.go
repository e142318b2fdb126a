// Package dictionary holds the dictionary domain model and the synchronized
// store that owns the word list and the pending proposal queue.
package dictionary

import (
	"strings"
	"time"
)

// ProposalKind distinguishes add proposals from update proposals.
type ProposalKind string

const (
	ProposalAdd    ProposalKind = "add"
	ProposalUpdate ProposalKind = "update"
)

// Entry is a single dictionary entry.
type Entry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Proposal is a pending add or update request awaiting admin disposition.
// For add proposals Meaning carries the proposed meaning; for update
// proposals OldMeaning is a snapshot of the meaning at submission time and
// NewMeaning the proposed replacement. The snapshot is not re-checked at
// approval time: the last approved update wins.
type Proposal struct {
	ID          string       `json:"id"`
	Kind        ProposalKind `json:"type"`
	Word        string       `json:"word"`
	Meaning     string       `json:"meaning,omitempty"`
	OldMeaning  string       `json:"old_meaning,omitempty"`
	NewMeaning  string       `json:"new_meaning,omitempty"`
	Username    string       `json:"username"`
	SubmittedAt time.Time    `json:"timestamp"`
}

// Normalize case-folds and trims a word so that lookups and proposals agree
// on a single canonical key.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
