package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tranvm/dictd/internal/dictionary"
)

// The wire protocol is one pipe-delimited UTF-8 line per request and one per
// reply, strictly request/response. Inbound lines decode into Command
// variants before dispatch so the session state machine never works on raw
// strings.

// Command is a decoded client request.
type Command interface {
	isCommand()
}

type LoginCommand struct {
	Username string
	Password string
}

type LookupCommand struct {
	Word string
}

type ListCommand struct{}

type ProposeAddCommand struct {
	Word    string
	Meaning string
}

type ProposeUpdateCommand struct {
	Word    string
	Meaning string
}

type ListPendingCommand struct{}

type ApproveCommand struct {
	ID string
}

type RejectCommand struct {
	ID string
}

type QuitCommand struct{}

func (LoginCommand) isCommand()         {}
func (LookupCommand) isCommand()        {}
func (ListCommand) isCommand()          {}
func (ProposeAddCommand) isCommand()    {}
func (ProposeUpdateCommand) isCommand() {}
func (ListPendingCommand) isCommand()   {}
func (ApproveCommand) isCommand()       {}
func (RejectCommand) isCommand()        {}
func (QuitCommand) isCommand()          {}

// ParseCommand decodes one inbound line. The returned error message is
// client-facing and becomes the payload of an ERROR reply.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, "|")
	verb = strings.ToUpper(strings.TrimSpace(verb))

	switch verb {
	case "LOGIN":
		username, password, ok := strings.Cut(rest, "|")
		if !ok || strings.Contains(password, "|") {
			return nil, fmt.Errorf("Invalid login format. Use: LOGIN|username|password")
		}
		return LoginCommand{Username: username, Password: password}, nil

	case "TRA":
		word := strings.TrimSpace(rest)
		if word == "" {
			return nil, fmt.Errorf("Usage: TRA|word")
		}
		return LookupCommand{Word: word}, nil

	case "LIST":
		return ListCommand{}, nil

	case "THEM":
		word, meaning, err := parseWordMeaning(rest, "THEM")
		if err != nil {
			return nil, err
		}
		return ProposeAddCommand{Word: word, Meaning: meaning}, nil

	case "SUA":
		word, meaning, err := parseWordMeaning(rest, "SUA")
		if err != nil {
			return nil, err
		}
		return ProposeUpdateCommand{Word: word, Meaning: meaning}, nil

	case "PENDING":
		return ListPendingCommand{}, nil

	case "APPROVE":
		id := strings.TrimSpace(rest)
		if id == "" {
			return nil, fmt.Errorf("Usage: APPROVE|request_id")
		}
		return ApproveCommand{ID: id}, nil

	case "REJECT":
		id := strings.TrimSpace(rest)
		if id == "" {
			return nil, fmt.Errorf("Usage: REJECT|request_id")
		}
		return RejectCommand{ID: id}, nil

	case "QUIT":
		return QuitCommand{}, nil

	default:
		return nil, fmt.Errorf("Unknown command: %s", verb)
	}
}

// parseWordMeaning splits the "word:meaning" argument shared by THEM and SUA.
func parseWordMeaning(rest, verb string) (string, string, error) {
	word, meaning, ok := strings.Cut(rest, ":")
	if !ok {
		return "", "", fmt.Errorf("Usage: %s|word:meaning", verb)
	}
	word = dictionary.Normalize(word)
	meaning = strings.TrimSpace(meaning)
	if word == "" || meaning == "" {
		return "", "", fmt.Errorf("Word and meaning cannot be empty")
	}
	return word, meaning, nil
}

// Reply tags. Clients branch on the tag before the first pipe, never on the
// message text.
const (
	tagSuccess     = "SUCCESS"
	tagError       = "ERROR"
	tagNotFound    = "NOTFOUND"
	tagListData    = "LIST_DATA"
	tagPendingData = "PENDING_DATA"
	tagWelcome     = "WELCOME"
)

func formatSuccess(message string) string {
	return tagSuccess + "|" + message
}

func formatError(message string) string {
	return tagError + "|" + message
}

func formatNotFound(message string) string {
	return tagNotFound + "|" + message
}

func formatListData(entries []dictionary.Entry) (string, error) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal dictionary listing: %w", err)
	}
	return tagListData + "|" + string(payload), nil
}

func formatPendingData(proposals []dictionary.Proposal) (string, error) {
	payload, err := json.Marshal(proposals)
	if err != nil {
		return "", fmt.Errorf("marshal pending listing: %w", err)
	}
	return tagPendingData + "|" + string(payload), nil
}
