package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tranvm/dictd/internal/dictionary"
	"github.com/tranvm/dictd/internal/directory"
	mock_server "github.com/tranvm/dictd/internal/mocks/server"
)

// sessionConn drives one session over an in-memory connection.
type sessionConn struct {
	conn   net.Conn
	reader *bufio.Reader
	done   chan struct{}
}

func startSession(t *testing.T, store Store, auth Authenticator) *sessionConn {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	sess := &session{
		id:     1,
		conn:   serverSide,
		store:  store,
		auth:   auth,
		logger: slog.Default(),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			_ = serverSide.Close()
		}()
		sess.run()
	}()
	t.Cleanup(func() {
		_ = clientSide.Close()
		<-done
	})

	return &sessionConn{
		conn:   clientSide,
		reader: bufio.NewReader(clientSide),
		done:   done,
	}
}

func (c *sessionConn) read(t *testing.T) string {
	t.Helper()
	line, err := c.reader.ReadString('\n')
	require.NoError(t, err)
	return line[:len(line)-1]
}

func (c *sessionConn) send(t *testing.T, line string) {
	t.Helper()
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	require.NoError(t, err)
}

func (c *sessionConn) login(t *testing.T, line string) {
	t.Helper()
	assert.Contains(t, c.read(t), "WELCOME|")
	c.send(t, line)
	assert.Contains(t, c.read(t), "SUCCESS|")
}

func TestSession_Authentication(t *testing.T) {
	t.Run("successful login replies with the role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		auth := mock_server.NewMockAuthenticator(ctrl)
		auth.EXPECT().Authenticate("user1", "user123").Return(directory.RoleUser, true)

		c := startSession(t, mock_server.NewMockStore(ctrl), auth)
		assert.Equal(t, "WELCOME|Dictionary Server v2.0 - Please Login", c.read(t))
		c.send(t, "LOGIN|user1|user123")
		assert.Equal(t, "SUCCESS|user|Login successful as user", c.read(t))
	})

	t.Run("bad credentials terminate the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		auth := mock_server.NewMockAuthenticator(ctrl)
		auth.EXPECT().Authenticate("user1", "wrong").Return(directory.Role(""), false)

		c := startSession(t, mock_server.NewMockStore(ctrl), auth)
		c.read(t)
		c.send(t, "LOGIN|user1|wrong")
		assert.Equal(t, "ERROR|Invalid username or password", c.read(t))

		// The server closes the connection; a further read fails.
		<-c.done
		_, err := c.reader.ReadString('\n')
		assert.Error(t, err)
	})

	t.Run("first line must be a login command", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		c := startSession(t, mock_server.NewMockStore(ctrl), mock_server.NewMockAuthenticator(ctrl))
		c.read(t)
		c.send(t, "TRA|hello")
		assert.Equal(t, "ERROR|Invalid login format. Use: LOGIN|username|password", c.read(t))
		<-c.done
	})
}

func TestSession_Dispatch(t *testing.T) {
	newUserSession := func(t *testing.T, role directory.Role) (*sessionConn, *mock_server.MockStore) {
		ctrl := gomock.NewController(t)
		auth := mock_server.NewMockAuthenticator(ctrl)
		auth.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(role, true)
		store := mock_server.NewMockStore(ctrl)

		c := startSession(t, store, auth)
		c.login(t, "LOGIN|someone|secret")
		return c, store
	}

	t.Run("lookup hit", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)
		store.EXPECT().Lookup("hello").Return("xin chào", true)

		c.send(t, "TRA|Hello")
		assert.Equal(t, "SUCCESS|hello: xin chào", c.read(t))
	})

	t.Run("lookup miss", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)
		store.EXPECT().Lookup("banana").Return("", false)

		c.send(t, "TRA|banana")
		assert.Equal(t, "NOTFOUND|Word 'banana' not found in dictionary", c.read(t))
	})

	t.Run("propose add passes the session username", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)
		store.EXPECT().ProposeAdd("banana", "a yellow fruit", "someone").Return("banana_abc123", nil)

		c.send(t, "THEM|banana:a yellow fruit")
		assert.Contains(t, c.read(t), "SUCCESS|")
	})

	t.Run("propose add conflict", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)
		store.EXPECT().ProposeAdd("hello", "greeting", "someone").
			Return("", fmt.Errorf("%w: %q", dictionary.ErrWordExists, "hello"))

		c.send(t, "THEM|hello:greeting")
		assert.Contains(t, c.read(t), "ERROR|")
	})

	t.Run("persistence failure is not reported as success", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)
		store.EXPECT().ProposeAdd("banana", "a yellow fruit", "someone").
			Return("", fmt.Errorf("save pending document: disk full"))

		c.send(t, "THEM|banana:a yellow fruit")
		assert.Equal(t, "ERROR|Internal error: operation was not saved", c.read(t))
	})

	t.Run("pending denied for user role", func(t *testing.T) {
		c, _ := newUserSession(t, directory.RoleUser)

		c.send(t, "PENDING")
		assert.Equal(t, "ERROR|Access denied. Admin only", c.read(t))
	})

	t.Run("approve denied for user role", func(t *testing.T) {
		c, _ := newUserSession(t, directory.RoleUser)

		c.send(t, "APPROVE|banana_abc123")
		assert.Equal(t, "ERROR|Access denied. Admin only", c.read(t))
	})

	t.Run("reject denied for user role", func(t *testing.T) {
		c, _ := newUserSession(t, directory.RoleUser)

		c.send(t, "REJECT|banana_abc123")
		assert.Equal(t, "ERROR|Access denied. Admin only", c.read(t))
	})

	t.Run("approve allowed for admin role", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleAdmin)
		store.EXPECT().Approve("banana_abc123").
			Return(dictionary.Proposal{Word: "banana"}, nil)

		c.send(t, "APPROVE|banana_abc123")
		assert.Equal(t, "SUCCESS|Request approved: banana", c.read(t))
	})

	t.Run("approve of unknown id", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleAdmin)
		store.EXPECT().Approve("nope").
			Return(dictionary.Proposal{}, fmt.Errorf("%w: %q", dictionary.ErrProposalNotFound, "nope"))

		c.send(t, "APPROVE|nope")
		assert.Equal(t, "ERROR|Request not found", c.read(t))
	})

	t.Run("unknown command keeps the session open", func(t *testing.T) {
		c, store := newUserSession(t, directory.RoleUser)

		c.send(t, "DELETE|hello")
		assert.Equal(t, "ERROR|Unknown command: DELETE", c.read(t))

		store.EXPECT().Lookup("hello").Return("xin chào", true)
		c.send(t, "TRA|hello")
		assert.Equal(t, "SUCCESS|hello: xin chào", c.read(t))
	})

	t.Run("second login is rejected but keeps the session open", func(t *testing.T) {
		c, _ := newUserSession(t, directory.RoleUser)

		c.send(t, "LOGIN|admin|admin123")
		assert.Equal(t, "ERROR|Already logged in", c.read(t))
	})

	t.Run("quit says goodbye and closes", func(t *testing.T) {
		c, _ := newUserSession(t, directory.RoleUser)

		c.send(t, "QUIT")
		assert.Equal(t, "SUCCESS|Goodbye!", c.read(t))
		<-c.done
	})
}
