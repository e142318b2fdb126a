// Package freedict looks up words on the Free Dictionary API. The terminal
// client uses it to suggest meanings for words the server does not know; the
// server itself never consults it.
package freedict

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

type entry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Definition is one suggested definition for a word.
type Definition struct {
	PartOfSpeech string
	Definition   string
}

// Client queries the Free Dictionary API.
type Client struct {
	baseURL string
	resty   *resty.Client
}

// NewClient creates a Client. An empty baseURL selects the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		resty:   resty.New(),
	}
}

// Lookup fetches definitions for a word.
func (c *Client) Lookup(ctx context.Context, word string) ([]Definition, error) {
	var entries []entry
	res, err := c.resty.R().
		SetContext(ctx).
		SetResult(&entries).
		Get(fmt.Sprintf("%s/%s", c.baseURL, word))
	if err != nil {
		return nil, fmt.Errorf("client.R.Get: %w", err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	var definitions []Definition
	for _, e := range entries {
		for _, meaning := range e.Meanings {
			for _, def := range meaning.Definitions {
				definitions = append(definitions, Definition{
					PartOfSpeech: meaning.PartOfSpeech,
					Definition:   def.Definition,
				})
			}
		}
	}
	return definitions, nil
}
