// Package auth decides who may use the desk: a staff member signs in with an external OAuth2
// provider, and only emails of the academy's domains are let through.
package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
)

// EmailResolver returns the email address behind a provider bearer token.
type EmailResolver interface {
	Email(ctx context.Context, accessToken string) (string, error)
}

var (
	ErrMissingToken = errors.New("access token is required")
	ErrUnverified   = errors.New("could not verify access token")
)

// DomainError is returned for a verified email outside the allowed domains.
type DomainError struct {
	Email string
}

func (e DomainError) Error() string {
	return "access is restricted to academy accounts: " + e.Email
}

// IsDomainError reports whether err was caused by a rejected email domain.
func IsDomainError(err error) bool {
	_, ok := errors.Cause(err).(*DomainError)
	return ok
}

// Allowed reports whether email ends with one of the allowed domain suffixes (case-insensitive).
func Allowed(email string, domains []string) bool {
	email = core.CleanString(email, true)
	if email == "" {
		return false
	}
	for _, d := range domains {
		d = core.CleanString(d, true)
		if d == "" {
			continue
		}
		if !strings.HasPrefix(d, "@") {
			d = "@" + d
		}
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

// Authenticator verifies provider tokens against the domain allow-list.
type Authenticator struct {
	resolver EmailResolver
	domains  []string
	logger   core.Logger
}

func NewAuthenticator(resolver EmailResolver, domains []string, logger core.Logger) *Authenticator {
	return &Authenticator{resolver: resolver, domains: domains, logger: logger}
}

// Authenticate returns the identity of the token holder. A rejected email yields no identity at all.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken string) (core.Identity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return core.Identity{}, ErrMissingToken
	}
	email, err := a.resolver.Email(ctx, accessToken)
	if err != nil {
		a.logger.Warn("resolving token email", err)
		return core.Identity{}, errors.Wrap(ErrUnverified, err.Error())
	}
	if !Allowed(email, a.domains) {
		a.logger.Warn("rejected sign-in", map[string]interface{}{"email": email})
		return core.Identity{}, &DomainError{Email: email}
	}
	return core.Identity{Email: core.CleanString(email, true)}, nil
}
