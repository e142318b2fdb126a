// Package directory is the static user directory the server authenticates
// against. Accounts are fixed for the lifetime of the process; the protocol
// never creates or modifies them.
package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role is the authorization level bound to an authenticated session.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is a single user directory entry. Passwords are stored and
// compared in plaintext, matching the wire protocol.
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     Role   `yaml:"role"`
}

// Directory resolves credentials to roles.
type Directory struct {
	accounts map[string]Account
}

// Builtin returns the directory with the historical default accounts.
func Builtin() *Directory {
	return New([]Account{
		{Username: "admin", Password: "admin123", Role: RoleAdmin},
		{Username: "user1", Password: "user123", Role: RoleUser},
		{Username: "user2", Password: "user123", Role: RoleUser},
	})
}

// New builds a directory from a list of accounts.
func New(accounts []Account) *Directory {
	byName := make(map[string]Account, len(accounts))
	for _, account := range accounts {
		byName[account.Username] = account
	}
	return &Directory{accounts: byName}
}

// LoadFile reads accounts from a YAML file.
func LoadFile(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var accounts []Account
	if err := yaml.NewDecoder(file).Decode(&accounts); err != nil {
		return nil, fmt.Errorf("decode users file %s: %w", path, err)
	}
	for _, account := range accounts {
		if account.Username == "" {
			return nil, fmt.Errorf("users file %s: account with empty username", path)
		}
		if account.Role != RoleAdmin && account.Role != RoleUser {
			return nil, fmt.Errorf("users file %s: account %q has unknown role %q", path, account.Username, account.Role)
		}
	}
	return New(accounts), nil
}

// Authenticate resolves a credential pair to a role. It fails closed: an
// unknown user and a wrong password are indistinguishable to the caller.
func (d *Directory) Authenticate(username, password string) (Role, bool) {
	account, ok := d.accounts[username]
	if !ok || account.Password != password {
		return "", false
	}
	return account.Role, true
}
