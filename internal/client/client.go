// Package client is a minimal protocol client for the dictionary server,
// used by the terminal front-end and by end-to-end tests.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/tranvm/dictd/internal/dictionary"
)

// Reply is one parsed server reply line.
type Reply struct {
	Tag     string
	Message string
}

// OK reports whether the reply tag is SUCCESS.
func (r Reply) OK() bool {
	return r.Tag == "SUCCESS"
}

// Client drives one authenticated session over a TCP connection. It is not
// safe for concurrent use; the protocol is strictly request/response.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the server, retrying with backoff while it comes up, and
// consumes the WELCOME greeting.
func Dial(ctx context.Context, address string) (*Client, error) {
	var conn net.Conn
	if err := retry.Do(
		func() error {
			var err error
			dialer := net.Dialer{Timeout: time.Second}
			conn, err = dialer.DialContext(ctx, "tcp", address)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(100*time.Millisecond),
	); err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	c := &Client{conn: conn, reader: bufio.NewReader(conn)}
	greeting, err := c.readReply()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	if greeting.Tag != "WELCOME" {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected greeting %q", greeting.Tag)
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Login authenticates the session and returns the resolved role.
func (c *Client) Login(username, password string) (string, error) {
	reply, err := c.roundTrip(fmt.Sprintf("LOGIN|%s|%s", username, password))
	if err != nil {
		return "", err
	}
	if !reply.OK() {
		return "", fmt.Errorf("login failed: %s", reply.Message)
	}
	role, _, _ := strings.Cut(reply.Message, "|")
	return role, nil
}

// Lookup asks for a word's meaning. The reply tag distinguishes SUCCESS from
// NOTFOUND.
func (c *Client) Lookup(word string) (Reply, error) {
	return c.roundTrip("TRA|" + word)
}

// List fetches all entries sorted by word.
func (c *Client) List() ([]dictionary.Entry, error) {
	reply, err := c.roundTrip("LIST")
	if err != nil {
		return nil, err
	}
	if reply.Tag != "LIST_DATA" {
		return nil, fmt.Errorf("list failed: %s", reply.Message)
	}
	var entries []dictionary.Entry
	if err := json.Unmarshal([]byte(reply.Message), &entries); err != nil {
		return nil, fmt.Errorf("decode dictionary listing: %w", err)
	}
	return entries, nil
}

// ProposeAdd submits an add proposal.
func (c *Client) ProposeAdd(word, meaning string) (Reply, error) {
	return c.roundTrip(fmt.Sprintf("THEM|%s:%s", word, meaning))
}

// ProposeUpdate submits an update proposal.
func (c *Client) ProposeUpdate(word, meaning string) (Reply, error) {
	return c.roundTrip(fmt.Sprintf("SUA|%s:%s", word, meaning))
}

// Pending fetches the pending proposals. Admin only.
func (c *Client) Pending() ([]dictionary.Proposal, error) {
	reply, err := c.roundTrip("PENDING")
	if err != nil {
		return nil, err
	}
	if reply.Tag != "PENDING_DATA" {
		return nil, fmt.Errorf("pending failed: %s", reply.Message)
	}
	var proposals []dictionary.Proposal
	if err := json.Unmarshal([]byte(reply.Message), &proposals); err != nil {
		return nil, fmt.Errorf("decode pending listing: %w", err)
	}
	return proposals, nil
}

// Approve approves a proposal by ID. Admin only.
func (c *Client) Approve(id string) (Reply, error) {
	return c.roundTrip("APPROVE|" + id)
}

// Reject rejects a proposal by ID. Admin only.
func (c *Client) Reject(id string) (Reply, error) {
	return c.roundTrip("REJECT|" + id)
}

// Quit ends the session politely.
func (c *Client) Quit() error {
	if _, err := c.roundTrip("QUIT"); err != nil {
		return err
	}
	return c.conn.Close()
}

// Raw sends an arbitrary line and returns the parsed reply. The terminal
// front-end uses it for pass-through commands.
func (c *Client) Raw(line string) (Reply, error) {
	return c.roundTrip(line)
}

func (c *Client) roundTrip(line string) (Reply, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		return Reply{}, fmt.Errorf("send %q: %w", line, err)
	}
	return c.readReply()
}

func (c *Client) readReply() (Reply, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	tag, message, _ := strings.Cut(line, "|")
	return Reply{Tag: tag, Message: message}, nil
}
