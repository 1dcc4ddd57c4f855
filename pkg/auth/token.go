package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrToken marks a failure to obtain or refresh a bearer token. The user has
// to re-authenticate; callers must not treat it as a calendar error.
var ErrToken = errors.New("could not obtain access token")

// TokenError wraps err so that errors.Is(result, ErrToken) holds.
func TokenError(err error) error {
	return fmt.Errorf("%w: %w", ErrToken, err)
}

// TokenSupplier hands out a bearer token for each calendar call.
type TokenSupplier interface {
	Token(ctx context.Context) (string, error)
}

// SourceSupplier adapts an oauth2.TokenSource.
type SourceSupplier struct {
	Source oauth2.TokenSource
}

func (s SourceSupplier) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := s.Source.Token()
	if err != nil {
		return "", TokenError(err)
	}
	if tok.AccessToken == "" {
		return "", TokenError(errors.New("empty access token"))
	}
	return tok.AccessToken, nil
}

// StaticSupplier always returns the same token.
type StaticSupplier string

func (s StaticSupplier) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", TokenError(errors.New("no token configured"))
	}
	return string(s), nil
}

// NewSupplier loads the stored token (authorizing first if needed) and wraps
// it as a TokenSupplier.
func NewSupplier(ctx context.Context) (TokenSupplier, error) {
	ts, err := GetTokenSource(ctx, Scopes)
	if err != nil {
		return nil, TokenError(err)
	}
	return SourceSupplier{Source: oauth2.ReuseTokenSource(nil, ts)}, nil
}
