package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Roles known to the approval workflow.
const (
	RoleHOD   = "HOD"
	RoleAdmin = "ADMIN"
	RoleTA    = "TA"
	RoleHR    = "HR"
)

// Roles lists every role in workflow order.
var Roles = []string{RoleHOD, RoleAdmin, RoleTA, RoleHR}

// Profile is the signed-in user as reported by /me. Fields beyond the
// typed ones are kept in Fields.
type Profile struct {
	Role     string         `json:"role" yaml:"role"`
	Username string         `json:"username,omitempty" yaml:"username,omitempty"`
	FullName string         `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Fields   map[string]any `json:"-" yaml:"fields,omitempty"`
}

// UnmarshalJSON keeps unknown fields.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	p.Role, _ = m["role"].(string)
	p.Username, _ = m["username"].(string)
	p.FullName, _ = m["full_name"].(string)
	delete(m, "role")
	delete(m, "username")
	delete(m, "full_name")
	if len(m) > 0 {
		p.Fields = m
	}
	return nil
}

// Me is the /me response.
type Me struct {
	Me *Profile `json:"me"`
}

// LoadMe fetches the signed-in user.
func (c *Client) LoadMe(ctx context.Context) (*Me, error) {
	body, err := c.Request(ctx, "/me", RequestOptions{})
	if err != nil {
		return nil, err
	}
	var me Me
	if err := body.Decode(&me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GuardRole returns the signed-in profile if it has role. Otherwise the
// user is sent to the login location and ErrRoleMismatch is returned.
// Request failures are returned unchanged.
func (c *Client) GuardRole(ctx context.Context, role string) (*Profile, error) {
	me, err := c.LoadMe(ctx)
	if err != nil {
		var ce *ClientError
		if errors.As(err, &ce) {
			return nil, err
		}
		// Undecodable /me answer: nobody is signed in as role.
		c.log.Debug("decode /me failed", "error", err)
		me = &Me{}
	}

	if me.Me == nil || me.Me.Role != role {
		c.navigator.Navigate(c.loginLocation)
		return nil, &ClientError{Code: CodeRoleMismatch, Message: MsgRoleMismatch}
	}
	return me.Me, nil
}

// Logout forgets the token and navigates to the login location.
func (c *Client) Logout() error {
	err := c.creds.ClearToken()
	c.navigator.Navigate(c.loginLocation)
	return err
}

// LoginResult is the /auth/login response.
type LoginResult struct {
	Token string   `json:"token"`
	User  *Profile `json:"user,omitempty"`
	Role  string   `json:"role,omitempty"`
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := c.Request(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := body.Decode(&res); err != nil || res.Token == "" {
		return nil, &ClientError{Code: CodeRequest, Message: "login response did not include a token", Cause: err}
	}
	if res.Role == "" && res.User != nil {
		res.Role = res.User.Role
	}

	if err := c.creds.SetToken(res.Token); err != nil {
		return nil, err
	}
	return &res, nil
}
