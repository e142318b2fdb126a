package server

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/tranvm/dictd/internal/dictionary"
	"github.com/tranvm/dictd/internal/directory"
)

//go:generate mockgen -source=session.go -destination=../mocks/server/mock_session.go -package=mock_server

// Store is the slice of the dictionary store a session dispatches to.
type Store interface {
	Lookup(word string) (string, bool)
	ListAll() []dictionary.Entry
	ProposeAdd(word, meaning, username string) (string, error)
	ProposeUpdate(word, newMeaning, username string) (string, error)
	ListPending() []dictionary.Proposal
	Approve(id string) (dictionary.Proposal, error)
	Reject(id string) (dictionary.Proposal, error)
}

// Authenticator validates a credential pair and yields the session role.
type Authenticator interface {
	Authenticate(username, password string) (directory.Role, bool)
}

const greeting = "Dictionary Server v2.0 - Please Login"

// session is the per-connection state machine: greet, authenticate exactly
// once, then serve one command per line until quit or disconnect.
type session struct {
	id       int64
	conn     net.Conn
	store    Store
	auth     Authenticator
	logger   *slog.Logger
	username string
	role     directory.Role
}

func (s *session) run() {
	scanner := bufio.NewScanner(s.conn)

	s.send(tagWelcome + "|" + greeting)

	if !s.authenticate(scanner) {
		return
	}

	for scanner.Scan() {
		line := scanner.Text()
		s.logger.Debug("received command", "client", s.id, "username", s.username, "line", line)

		command, err := ParseCommand(line)
		if err != nil {
			s.send(formatError(err.Error()))
			continue
		}
		if _, ok := command.(QuitCommand); ok {
			s.send(formatSuccess("Goodbye!"))
			return
		}

		s.send(s.dispatch(command))
	}

	if err := scanner.Err(); err != nil {
		s.logger.Debug("connection read failed", "client", s.id, "error", err)
	}
}

// authenticate reads exactly one line, which must be a login command. On
// failure the error reply is sent and the session ends; there is no retry
// loop.
func (s *session) authenticate(scanner *bufio.Scanner) bool {
	if !scanner.Scan() {
		return false
	}

	command, err := ParseCommand(scanner.Text())
	if err != nil {
		s.send(formatError(err.Error()))
		return false
	}
	login, ok := command.(LoginCommand)
	if !ok {
		s.send(formatError("Invalid login format. Use: LOGIN|username|password"))
		return false
	}

	role, ok := s.auth.Authenticate(login.Username, login.Password)
	if !ok {
		s.logger.Info("authentication failed", "client", s.id, "username", login.Username)
		s.send(formatError("Invalid username or password"))
		return false
	}

	s.username = login.Username
	s.role = role
	s.logger.Info("user logged in", "client", s.id, "username", s.username, "role", s.role)
	s.send(fmt.Sprintf("%s|%s|Login successful as %s", tagSuccess, role, role))
	return true
}

func (s *session) dispatch(command Command) string {
	switch cmd := command.(type) {
	case LoginCommand:
		return formatError("Already logged in")

	case LookupCommand:
		word := dictionary.Normalize(cmd.Word)
		meaning, found := s.store.Lookup(word)
		if !found {
			return formatNotFound(fmt.Sprintf("Word '%s' not found in dictionary", word))
		}
		return formatSuccess(fmt.Sprintf("%s: %s", word, meaning))

	case ListCommand:
		reply, err := formatListData(s.store.ListAll())
		if err != nil {
			return formatError("Failed to encode dictionary listing")
		}
		return reply

	case ProposeAddCommand:
		if _, err := s.store.ProposeAdd(cmd.Word, cmd.Meaning, s.username); err != nil {
			return s.storeError(err)
		}
		return formatSuccess(fmt.Sprintf("Request submitted for approval: %s: %s", cmd.Word, cmd.Meaning))

	case ProposeUpdateCommand:
		if _, err := s.store.ProposeUpdate(cmd.Word, cmd.Meaning, s.username); err != nil {
			return s.storeError(err)
		}
		return formatSuccess(fmt.Sprintf("Update request submitted for approval: %s: %s", cmd.Word, cmd.Meaning))

	case ListPendingCommand:
		if s.role != directory.RoleAdmin {
			return formatError("Access denied. Admin only")
		}
		reply, err := formatPendingData(s.store.ListPending())
		if err != nil {
			return formatError("Failed to encode pending listing")
		}
		return reply

	case ApproveCommand:
		if s.role != directory.RoleAdmin {
			return formatError("Access denied. Admin only")
		}
		proposal, err := s.store.Approve(cmd.ID)
		if err != nil {
			return s.storeError(err)
		}
		return formatSuccess(fmt.Sprintf("Request approved: %s", proposal.Word))

	case RejectCommand:
		if s.role != directory.RoleAdmin {
			return formatError("Access denied. Admin only")
		}
		proposal, err := s.store.Reject(cmd.ID)
		if err != nil {
			return s.storeError(err)
		}
		return formatSuccess(fmt.Sprintf("Request rejected: %s", proposal.Word))

	default:
		return formatError(fmt.Sprintf("Unknown command: %T", command))
	}
}

// storeError turns a store error into a client-facing reply. Persistence
// failures are reported as failed commands; the session never claims success
// for a write that did not reach the durable document.
func (s *session) storeError(err error) string {
	switch {
	case errors.Is(err, dictionary.ErrWordExists):
		return formatError(err.Error())
	case errors.Is(err, dictionary.ErrWordNotFound):
		return formatError(err.Error())
	case errors.Is(err, dictionary.ErrProposalNotFound):
		return formatError("Request not found")
	case errors.Is(err, dictionary.ErrEmptyField):
		return formatError("Word and meaning cannot be empty")
	default:
		s.logger.Error("store operation failed", "client", s.id, "error", err)
		return formatError("Internal error: operation was not saved")
	}
}

func (s *session) send(reply string) {
	if _, err := fmt.Fprintf(s.conn, "%s\n", reply); err != nil {
		s.logger.Debug("write failed", "client", s.id, "error", err)
	}
}
