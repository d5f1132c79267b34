// Package identity defines the boundary to the identity provider.
//
// Credential handling and token issuance live outside this server; all it
// needs is something that turns an incoming connection request into a
// stable numeric player id and a display name. QueryProvider is the
// development implementation that trusts query parameters; production
// deployments plug in a real token-verifying Provider.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/wricardo/royal-game-of-ur/game/engine"
)

var ErrNoIdentity = errors.New("missing player identity")

// Provider resolves the identity behind a connection request.
type Provider interface {
	Identify(r *http.Request) (engine.PlayerID, string, error)
}

// QueryProvider reads the identity from the request's query string:
// ?player=<id>&name=<display name>. It performs no verification and is
// meant for development and tests only.
type QueryProvider struct{}

func (QueryProvider) Identify(r *http.Request) (engine.PlayerID, string, error) {
	raw := r.URL.Query().Get("player")
	if raw == "" {
		return 0, "", ErrNoIdentity
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid player id %q: %w", raw, err)
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}

	return engine.PlayerID(id), name, nil
}
