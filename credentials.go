package pearch

import (
	"context"
	"strings"
)

// DefaultBaseURL is the public endpoint of the search service.
const DefaultBaseURL = "https://api.pearch.ai"

// Credentials identify the caller to the search service.
type Credentials struct {
	BaseURL string
	APIKey  string
}

// CredentialProvider resolves [Credentials] for the active configuration.
//
// Providers are consulted once per task, so rotating keys take effect on
// the next item of a batch.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// CredentialsFunc adapts a function to [CredentialProvider].
type CredentialsFunc func(ctx context.Context) (Credentials, error)

// Credentials calls f.
func (f CredentialsFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

// StaticCredentials is a [CredentialProvider] that always returns itself.
type StaticCredentials Credentials

// Credentials returns c.
func (c StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(c), nil
}

// resolveCredentials loads and checks credentials. Each failure mode is a
// distinct *CredentialError.
func resolveCredentials(ctx context.Context, p CredentialProvider) (Credentials, error) {
	if p == nil {
		return Credentials{}, &CredentialError{Reason: "Pearch API credentials not found"}
	}
	creds, err := p.Credentials(ctx)
	if err != nil {
		return Credentials{}, &CredentialError{Reason: "failed to load credentials", Err: err}
	}
	creds.BaseURL = strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/")
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	if creds.BaseURL == "" {
		return Credentials{}, &CredentialError{Reason: "base URL not found in credentials"}
	}
	if creds.APIKey == "" {
		return Credentials{}, &CredentialError{Reason: "API key not found in credentials"}
	}
	return creds, nil
}
