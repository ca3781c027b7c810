package game

import (
	"github.com/google/uuid"
)

// Identity is issued once per new connection. ID is public and shows up in
// snapshots; Token stays with the client and lets it resume as ID later.
type Identity struct {
	ID    string `json:"playerId"`
	Token string `json:"token"`
}

type IdentityProvider struct {
	byToken map[string]string
}

func NewIdentityProvider() *IdentityProvider {
	return &IdentityProvider{byToken: make(map[string]string)}
}

func (ip *IdentityProvider) Issue() Identity {
	id := Identity{ID: uuid.NewString(), Token: uuid.NewString()}
	ip.byToken[id.Token] = id.ID
	return id
}

// Resolve returns the player ID a token was issued for.
func (ip *IdentityProvider) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	id, ok := ip.byToken[token]
	return id, ok
}

// Forget drops tokens whose player is gone for good.
func (ip *IdentityProvider) Forget(playerID string) {
	for tok, id := range ip.byToken {
		if id == playerID {
			delete(ip.byToken, tok)
		}
	}
}
