package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileSnapshotter mirrors the store's collections to two flat JSON documents:
// the dictionary as a word-to-meaning object and the pending queue as an
// ID-to-proposal object. Loading a missing file yields a nil map so the
// caller can tell a first run from an empty collection.
type FileSnapshotter struct {
	wordsPath     string
	proposalsPath string
}

// NewFileSnapshotter creates a FileSnapshotter backed by the given paths.
func NewFileSnapshotter(wordsPath, proposalsPath string) *FileSnapshotter {
	return &FileSnapshotter{
		wordsPath:     wordsPath,
		proposalsPath: proposalsPath,
	}
}

func (s *FileSnapshotter) LoadWords() (map[string]string, error) {
	var words map[string]string
	if err := readJSONFile(s.wordsPath, &words); err != nil {
		return nil, fmt.Errorf("load dictionary document: %w", err)
	}
	return words, nil
}

func (s *FileSnapshotter) LoadProposals() (map[string]Proposal, error) {
	var proposals map[string]Proposal
	if err := readJSONFile(s.proposalsPath, &proposals); err != nil {
		return nil, fmt.Errorf("load pending document: %w", err)
	}
	return proposals, nil
}

func (s *FileSnapshotter) SaveWords(words map[string]string) error {
	if err := writeJSONFile(s.wordsPath, words); err != nil {
		return fmt.Errorf("save dictionary document: %w", err)
	}
	return nil
}

func (s *FileSnapshotter) SaveProposals(proposals map[string]Proposal) error {
	if err := writeJSONFile(s.proposalsPath, proposals); err != nil {
		return fmt.Errorf("save pending document: %w", err)
	}
	return nil
}

func readJSONFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("os.Open(%s): %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		return fmt.Errorf("json.NewDecoder(%s).Decode: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s): %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("json.NewEncoder(%s).Encode: %w", path, err)
	}
	return nil
}
