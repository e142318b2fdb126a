package dictionary

// Snapshotter persists point-in-time copies of the store's two collections.
// Each Save rewrites the affected collection wholesale; implementations must
// report write failures so callers can refuse to claim success.
type Snapshotter interface {
	LoadWords() (map[string]string, error)
	LoadProposals() (map[string]Proposal, error)
	SaveWords(words map[string]string) error
	SaveProposals(proposals map[string]Proposal) error
}
