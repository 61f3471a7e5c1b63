// Package authstate owns the lifecycle of the learner's auth token.
// The token is held in an explicit context object injected into the
// session client, never in package-level globals: it is created by
// login or registration, restored from durable storage on startup, and
// destroyed by logout or when the backend rejects it.
package authstate

import (
	"github.com/orienta-za/orienta/internal/errors"
)

// Context is the process-wide authentication state
type Context struct {
	store Store
	creds Credentials
	ok    bool
}

// New creates an authentication context backed by store
func New(store Store) *Context {
	return &Context{store: store}
}

// RestoreFromStorage loads previously persisted credentials, if any.
// A missing credential file leaves the context logged out without error.
func (c *Context) RestoreFromStorage() error {
	creds, ok, err := c.store.Get()
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuthStoreFailed, "restore credentials", err)
	}
	c.creds = creds
	c.ok = ok
	return nil
}

// Login records and persists a freshly issued token
func (c *Context) Login(token, email string) error {
	creds := Credentials{AccessToken: token, Email: email}
	if err := c.store.Set(creds); err != nil {
		return errors.Wrap(errors.ErrCodeAuthStoreFailed, "persist credentials", err)
	}
	c.creds = creds
	c.ok = true
	return nil
}

// Logout destroys the token locally. The backend owns token issuance
// and revocation; the client only forgets what it held.
func (c *Context) Logout() error {
	c.creds = Credentials{}
	c.ok = false
	if err := c.store.Remove(); err != nil {
		return errors.Wrap(errors.ErrCodeAuthStoreFailed, "remove credentials", err)
	}
	return nil
}

// LoggedIn reports whether a token is present
func (c *Context) LoggedIn() bool {
	return c.ok
}

// Token returns the bearer token, or "" when logged out
func (c *Context) Token() string {
	return c.creds.AccessToken
}

// Email returns the email used at login, or "" when logged out
func (c *Context) Email() string {
	return c.creds.Email
}

// HandleAuthFailure clears the token when err indicates the backend
// rejected it. Returns true when a logout happened. This is the
// propagation point for the cross-cutting invalid-token contract; the
// intake flow itself never touches it.
func (c *Context) HandleAuthFailure(err error) (bool, error) {
	if !errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
		return false, nil
	}
	if logoutErr := c.Logout(); logoutErr != nil {
		return true, logoutErr
	}
	return true, nil
}
