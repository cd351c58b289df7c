// Package authz computes the access tier of the current session.
//
// The tier is derived from scratch on every call: token presence is
// checked locally, then validity and admin role are probed against the
// remote API. Nothing is cached between calls, so a stale ADMIN answer
// can never outlive a failed validity check.
package authz

import (
	"context"

	"albumshop/internal/session"
)

// Tier is the access level of the current session.
type Tier int

const (
	TierAnonymous Tier = iota
	TierAuthenticated
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierAuthenticated:
		return "authenticated"
	case TierAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Satisfies reports whether this tier grants access to a view that
// requires the given tier. Admin satisfies authenticated views.
func (t Tier) Satisfies(required Tier) bool {
	return t >= required
}

// TokenProber is the slice of the API client the resolver needs.
type TokenProber interface {
	// CheckToken returns nil iff the token is currently valid.
	CheckToken(ctx context.Context, token string) error
	// CheckAdmin returns nil iff the token belongs to an admin.
	CheckAdmin(ctx context.Context, token string) error
}

// Resolver derives the tier for the credential held in a session store.
type Resolver struct {
	store session.Store
	api   TokenProber
}

// New creates a Resolver over the given store and API client.
func New(store session.Store, api TokenProber) *Resolver {
	return &Resolver{store: store, api: api}
}

// Resolve computes the current tier. It fails closed: any failure of
// the validity probe (remote rejection or unreachable server) yields
// TierAnonymous and clears the stored credential, so a broken check can
// never leave a user wrongly elevated. A failing admin probe merely
// downgrades to TierAuthenticated.
func (r *Resolver) Resolve(ctx context.Context) Tier {
	cred, ok := r.store.Credential()
	if !ok {
		return TierAnonymous
	}

	if err := r.api.CheckToken(ctx, cred.Token); err != nil {
		_ = r.store.Clear()
		return TierAnonymous
	}

	if err := r.api.CheckAdmin(ctx, cred.Token); err != nil {
		return TierAuthenticated
	}
	return TierAdmin
}
