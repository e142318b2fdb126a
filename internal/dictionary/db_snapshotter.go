package dictionary

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tranvm/dictd/internal/database"
)

// DBSnapshotter mirrors the store's collections to MySQL tables as an
// alternative to the flat JSON documents. Each save rewrites the whole table
// inside a transaction, preserving the wholesale-rewrite contract of the
// file backend.
type DBSnapshotter struct {
	db *sqlx.DB
}

// NewDBSnapshotter creates a DBSnapshotter on an open connection.
func NewDBSnapshotter(db *sqlx.DB) *DBSnapshotter {
	return &DBSnapshotter{db: db}
}

type entryRow struct {
	Word    string `db:"word"`
	Meaning string `db:"meaning"`
}

type proposalRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	Word        string `db:"word"`
	Meaning     string `db:"meaning"`
	OldMeaning  string `db:"old_meaning"`
	NewMeaning  string `db:"new_meaning"`
	Username    string `db:"username"`
	SubmittedAt string `db:"submitted_at"`
}

const submittedAtLayout = "2006-01-02 15:04:05"

func (s *DBSnapshotter) LoadWords() (map[string]string, error) {
	var rows []entryRow
	if err := s.db.Select(&rows, "SELECT word, meaning FROM entries"); err != nil {
		return nil, fmt.Errorf("load dictionary entries: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	words := make(map[string]string, len(rows))
	for _, row := range rows {
		words[row.Word] = row.Meaning
	}
	return words, nil
}

func (s *DBSnapshotter) LoadProposals() (map[string]Proposal, error) {
	var rows []proposalRow
	if err := s.db.Select(&rows, "SELECT id, kind, word, meaning, old_meaning, new_meaning, username, submitted_at FROM proposals"); err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}

	proposals := make(map[string]Proposal, len(rows))
	for _, row := range rows {
		proposal, err := row.toProposal()
		if err != nil {
			return nil, err
		}
		proposals[proposal.ID] = proposal
	}
	return proposals, nil
}

func (s *DBSnapshotter) SaveWords(words map[string]string) error {
	return database.RunInTx(context.Background(), s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
			return fmt.Errorf("clear dictionary entries: %w", err)
		}
		for word, meaning := range words {
			_, err := tx.NamedExecContext(ctx,
				"INSERT INTO entries (word, meaning) VALUES (:word, :meaning)",
				entryRow{Word: word, Meaning: meaning})
			if err != nil {
				return fmt.Errorf("insert dictionary entry %q: %w", word, err)
			}
		}
		return nil
	})
}

func (s *DBSnapshotter) SaveProposals(proposals map[string]Proposal) error {
	return database.RunInTx(context.Background(), s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM proposals"); err != nil {
			return fmt.Errorf("clear proposals: %w", err)
		}
		for _, proposal := range proposals {
			_, err := tx.NamedExecContext(ctx,
				"INSERT INTO proposals (id, kind, word, meaning, old_meaning, new_meaning, username, submitted_at) VALUES (:id, :kind, :word, :meaning, :old_meaning, :new_meaning, :username, :submitted_at)",
				fromProposal(proposal))
			if err != nil {
				return fmt.Errorf("insert proposal %q: %w", proposal.ID, err)
			}
		}
		return nil
	})
}

func (row proposalRow) toProposal() (Proposal, error) {
	submittedAt, err := time.Parse(submittedAtLayout, row.SubmittedAt)
	if err != nil {
		return Proposal{}, fmt.Errorf("parse submitted_at of proposal %q: %w", row.ID, err)
	}
	return Proposal{
		ID:          row.ID,
		Kind:        ProposalKind(row.Kind),
		Word:        row.Word,
		Meaning:     row.Meaning,
		OldMeaning:  row.OldMeaning,
		NewMeaning:  row.NewMeaning,
		Username:    row.Username,
		SubmittedAt: submittedAt,
	}, nil
}

func fromProposal(proposal Proposal) proposalRow {
	return proposalRow{
		ID:          proposal.ID,
		Kind:        string(proposal.Kind),
		Word:        proposal.Word,
		Meaning:     proposal.Meaning,
		OldMeaning:  proposal.OldMeaning,
		NewMeaning:  proposal.NewMeaning,
		Username:    proposal.Username,
		SubmittedAt: proposal.SubmittedAt.UTC().Format(submittedAtLayout),
	}
}
