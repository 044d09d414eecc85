// Package identity resolves Google OAuth2 access tokens to the signed-in account's email.
package identity

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/impact7/scoredesk/core/auth"
)

// GoogleResolver asks Google's userinfo endpoint who owns an access token.
type GoogleResolver struct {
	// Endpoint overrides the API base URL (tests).
	Endpoint string
}

var _ auth.EmailResolver = GoogleResolver{}

func (r GoogleResolver) Email(ctx context.Context, accessToken string) (string, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})),
	}
	if r.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(r.Endpoint))
	}
	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return "", errors.Wrap(err, "creating userinfo client")
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "fetching userinfo")
	}
	if info.Email == "" {
		return "", errors.New("token carries no email scope")
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return "", errors.Errorf("email %s is not verified", info.Email)
	}
	return info.Email, nil
}
