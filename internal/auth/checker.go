package auth

import (
	"crypto/subtle"
	"strings"

	"audiopref/internal/config"
)

// Result reports the outcome of a credential check. AdminName and AdminEmail
// are only set for developer logins.
type Result struct {
	Success     bool   `json:"success"`
	IsDeveloper bool   `json:"isDeveloper,omitempty"`
	AdminName   string `json:"adminName,omitempty"`
	AdminEmail  string `json:"adminEmail,omitempty"`
}

// Checker validates login attempts.
type Checker struct {
	userPassword  string
	adminPassword string
	adminName     string
	adminEmail    string
}

// NewChecker copies the secrets out of cfg.Auth.
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{
		userPassword:  cfg.Auth.UserPassword,
		adminPassword: cfg.Auth.AdminPassword,
		adminName:     cfg.Auth.AdminName,
		adminEmail:    cfg.Auth.AdminEmail,
	}
}

// Check returns success for the rater password regardless of name and email.
// The developer password also requires the configured admin name and email;
// the email match ignores case and surrounding spaces.
func (c *Checker) Check(password, name, email string) Result {
	if c == nil || password == "" {
		return Result{}
	}
	if c.userPassword != "" && equal(password, c.userPassword) {
		return Result{Success: true}
	}
	if c.adminPassword == "" || !equal(password, c.adminPassword) {
		return Result{}
	}
	nameOK := equal(strings.TrimSpace(name), c.adminName)
	emailOK := equal(strings.ToLower(strings.TrimSpace(email)), strings.ToLower(c.adminEmail))
	if !nameOK || !emailOK {
		return Result{}
	}
	return Result{
		Success:     true,
		IsDeveloper: true,
		AdminName:   c.adminName,
		AdminEmail:  c.adminEmail,
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
