// Package identity supplies the current user and the admin capability
// check consumed by the sync engine.
//
// The app never talks to an auth provider directly; whatever performs the
// actual sign-in (a real provider, a config file, a test) implements
// Provider. Admin rights are an injected authorization policy rather than
// an identity constant, so the single-elevated-writer rule stays
// configurable and testable.
package identity

import "sync"

// User is an authenticated identity.
type User struct {
	// ID is the stable user id used to address per-user remote subtrees.
	ID string
	// Admin reports whether this identity may write the shared question
	// bank.
	Admin bool
}

// Provider supplies the current identity and sign-in/out notifications.
type Provider interface {
	// CurrentUser returns the signed-in user, or ok=false when signed out.
	CurrentUser() (User, bool)

	// OnChange registers a callback fired on sign-in (signedIn=true) and
	// sign-out (signedIn=false). Used to start and stop background sync.
	OnChange(fn func(u User, signedIn bool))
}

// Policy decides which user ids hold admin rights.
type Policy interface {
	IsAdmin(uid string) bool
}

// AdminList is a Policy backed by an explicit set of user ids.
type AdminList map[string]struct{}

// NewAdminList builds a policy from configured admin user ids.
func NewAdminList(uids ...string) AdminList {
	list := make(AdminList, len(uids))
	for _, uid := range uids {
		if uid != "" {
			list[uid] = struct{}{}
		}
	}
	return list
}

// IsAdmin implements Policy.
func (a AdminList) IsAdmin(uid string) bool {
	_, ok := a[uid]
	return ok
}

// StaticProvider is a Provider whose identity is set programmatically
// (from config or by tests). It applies a Policy to derive the Admin flag.
type StaticProvider struct {
	mu        sync.Mutex
	user      User
	signedIn  bool
	policy    Policy
	callbacks []func(User, bool)
}

// NewStaticProvider creates a signed-out provider with the given policy.
// A nil policy grants admin to nobody.
func NewStaticProvider(policy Policy) *StaticProvider {
	if policy == nil {
		policy = AdminList{}
	}
	return &StaticProvider{policy: policy}
}

// SignIn sets the current user and notifies listeners.
func (p *StaticProvider) SignIn(uid string) {
	p.mu.Lock()
	p.user = User{ID: uid, Admin: p.policy.IsAdmin(uid)}
	p.signedIn = true
	user := p.user
	callbacks := append([]func(User, bool){}, p.callbacks...)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(user, true)
	}
}

// SignOut clears the current user and notifies listeners.
func (p *StaticProvider) SignOut() {
	p.mu.Lock()
	user := p.user
	p.user = User{}
	p.signedIn = false
	callbacks := append([]func(User, bool){}, p.callbacks...)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(user, false)
	}
}

// CurrentUser implements Provider.
func (p *StaticProvider) CurrentUser() (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.signedIn
}

// OnChange implements Provider.
func (p *StaticProvider) OnChange(fn func(User, bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, fn)
}
