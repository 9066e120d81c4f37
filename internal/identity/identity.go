// Package identity resolves request credentials to the acting user.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"
)

// ErrInvalidCredential means a credential was presented but could not be resolved.
var ErrInvalidCredential = errors.New("invalid credential")

// Provider resolves a bearer credential to the current actor. An empty
// credential is the anonymous actor, not an error.
type Provider interface {
	CurrentActor(ctx context.Context, credential string) (uuid.NullUUID, error)
}

// SupabaseProvider validates Supabase access tokens against the auth API.
type SupabaseProvider struct {
	client *supa.Client
}

// NewSupabaseProvider creates a provider using an initialized Supabase client.
func NewSupabaseProvider(client *supa.Client) *SupabaseProvider {
	return &SupabaseProvider{client: client}
}

// CurrentActor exchanges an access token for the user it was issued to.
func (p *SupabaseProvider) CurrentActor(ctx context.Context, token string) (uuid.NullUUID, error) {
	if token == "" {
		return uuid.NullUUID{}, nil
	}
	if err := ctx.Err(); err != nil {
		return uuid.NullUUID{}, err
	}
	user, err := p.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if user.ID == uuid.Nil {
		return uuid.NullUUID{}, ErrInvalidCredential
	}
	return uuid.NullUUID{UUID: user.ID, Valid: true}, nil
}

// DevProvider trusts the credential to be the user id itself. It is meant for
// local development against the SQLite store and must not face the internet.
type DevProvider struct{}

// CurrentActor parses the credential as a user id.
func (DevProvider) CurrentActor(_ context.Context, credential string) (uuid.NullUUID, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(credential)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
