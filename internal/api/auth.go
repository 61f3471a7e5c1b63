package api

import (
	"context"
	"net/http"

	"github.com/orienta-za/orienta/internal/errors"
)

// User is an Orienta account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// AuthResult carries the token issued on register or login
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// LearnerProfile is the learner record built up from intake answers.
// The backend omits it entirely for accounts without one.
type LearnerProfile struct {
	IntakeCompleted bool `json:"intake_completed"`
}

// ProfileResult is the account plus the learner profile when present
type ProfileResult struct {
	User    User            `json:"user"`
	Profile *LearnerProfile `json:"profile,omitempty"`
}

// IntakeCompleted reports whether the learner finished the intake
func (p *ProfileResult) IntakeCompleted() bool {
	return p.Profile != nil && p.Profile.IntakeCompleted
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a learner account and returns its first token
func (c *Client) Register(ctx context.Context, email, password, phone string) (*AuthResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", registerRequest{
		Email:    email,
		Password: password,
		Phone:    phone,
		Role:     "learner",
	})
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("account registered", "email", email)
	return &result, nil
}

// Login exchanges credentials for a token. A 401 here means the
// credentials were wrong, not that a stored token expired.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := parseResponse(resp, &result); err != nil {
		if errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	c.logger.Debug("logged in", "email", email)
	return &result, nil
}

// Profile fetches the authenticated account
func (c *Client) Profile(ctx context.Context) (*ProfileResult, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/profile", nil)
	if err != nil {
		return nil, err
	}

	var result ProfileResult
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
