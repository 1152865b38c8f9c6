// Package owner resolves which user account owns inbound traffic. Webhooks
// only carry a page identifier; the resolver maps that to a user, falling
// back to a persisted default owner seeded once at startup.
package owner

import (
	"github.com/surya9634/Work-Flow-zen/internal/logging"
	"github.com/surya9634/Work-Flow-zen/internal/store"
)

const (
	demoOwnerEmail    = "owner@return.local"
	demoOwnerPassword = "owner"
)

// Resolver maps page IDs to owner user IDs
type Resolver struct {
	auth         *store.AuthStore
	pageOwners   *store.PageOwnerStore
	defaultOwner *store.DefaultOwnerStore
}

// NewResolver wires a Resolver
func NewResolver(auth *store.AuthStore, pageOwners *store.PageOwnerStore, defaultOwner *store.DefaultOwnerStore) *Resolver {
	return &Resolver{auth: auth, pageOwners: pageOwners, defaultOwner: defaultOwner}
}

// Bootstrap seeds the default owner at startup so lookups never create users
// as a side effect. Priority: valid persisted pointer, first onboarded user,
// first existing user, then a freshly created demo account.
func (r *Resolver) Bootstrap() (string, error) {
	if id := r.defaultOwner.Get(); id != "" {
		if _, err := r.auth.GetByID(id); err == nil {
			return id, nil
		}
	}

	if onboarded := r.auth.OnboardedUserIDs(); len(onboarded) > 0 {
		if err := r.defaultOwner.Set(onboarded[0]); err != nil {
			return "", err
		}
		return onboarded[0], nil
	}

	if id := r.auth.FirstUserID(); id != "" {
		if err := r.defaultOwner.Set(id); err != nil {
			return "", err
		}
		return id, nil
	}

	u, err := r.auth.CreateUser(demoOwnerEmail, demoOwnerPassword, "Demo Owner")
	if err != nil {
		return "", err
	}
	logging.Info("seeded demo owner account %s", u.Email)
	if err := r.defaultOwner.Set(u.ID); err != nil {
		return "", err
	}
	return u.ID, nil
}

// DefaultOwner returns the bootstrapped default owner ID, or ""
func (r *Resolver) DefaultOwner() string {
	return r.defaultOwner.Get()
}

// EnsurePageOwner returns the owner for a page, assigning and persisting the
// default owner on first contact. The mapping is never re-evaluated once set.
func (r *Resolver) EnsurePageOwner(pageID string) string {
	if pageID == "" {
		return ""
	}
	if existing := r.pageOwners.Get(pageID); existing != "" {
		return existing
	}
	owner := r.defaultOwner.Get()
	if owner == "" {
		return ""
	}
	if err := r.pageOwners.Set(pageID, owner); err != nil {
		logging.Warn("failed to persist owner for page %s: %v", pageID, err)
	}
	return owner
}
