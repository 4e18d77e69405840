package session

import (
	"context"
	"fmt"
	"net/http"
)

const PathLogin = "/cures/dashboard/login"

// Poster is the subset of the remote client the authenticator needs.
type Poster interface {
	Post(ctx context.Context, path string, body any, headers http.Header, out any) error
}

// RemoteAuthenticator posts credentials to the dashboard login endpoint.
// Any 2xx response is a successful login; the body is ignored.
type RemoteAuthenticator struct {
	client Poster
}

func NewRemoteAuthenticator(client Poster) *RemoteAuthenticator {
	return &RemoteAuthenticator{client: client}
}

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, creds Credentials) error {
	if err := a.client.Post(ctx, PathLogin, creds, nil, nil); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return nil
}
