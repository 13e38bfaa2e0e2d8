package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

var (
	errUserExists     = errors.New("username already taken")
	errWrongPassword  = errors.New("current password is wrong")
	errNotAdmin       = errors.New("not an administrator")
	errUnknownAccount = errors.New("unknown account")
)

type account struct {
	identity     domain.Identity
	passwordHash string
	secret       string
	createdAt    time.Time
}

// directory holds every account. Admins authenticate against an
// Argon2id hash; every account carries the secret a redeemed token
// reveals.
type directory struct {
	mu     sync.RWMutex
	byID   map[int64]*account
	byName map[string]int64
	nextID int64
}

func newDirectory() *directory {
	return &directory{
		byID:   make(map[int64]*account),
		byName: make(map[string]int64),
	}
}

// add creates an account and returns its ID.
func (d *directory) add(id domain.Identity, password string, now time.Time) (int64, error) {
	var hash string
	if id.Role == domain.RoleAdmin {
		h, err := HashPassword(password)
		if err != nil {
			return 0, err
		}
		hash = h
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byName[id.Username]; ok {
		return 0, errUserExists
	}
	d.nextID++
	id.ID = d.nextID
	d.byID[id.ID] = &account{
		identity:     id,
		passwordHash: hash,
		secret:       password,
		createdAt:    now,
	}
	d.byName[id.Username] = id.ID
	return id.ID, nil
}

func (d *directory) get(id int64) (domain.UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return domain.UserRecord{}, false
	}
	return a.record(), true
}

func (d *directory) list() []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.UserRecord, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, a.record())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// authenticate returns the identity of an active admin whose password matches.
func (d *directory) authenticate(username, password string) (domain.Identity, bool) {
	d.mu.RLock()
	id, ok := d.byName[strings.TrimSpace(username)]
	var a account
	if ok {
		a = *d.byID[id]
	}
	d.mu.RUnlock()

	if !ok || !a.identity.IsAdmin() || !a.identity.IsActive {
		return domain.Identity{}, false
	}
	if !VerifyPassword(password, a.passwordHash) {
		return domain.Identity{}, false
	}
	return a.identity, true
}

// changePassword rotates an admin password and clears must_change_password.
// It reports whether the flag was set before the change.
func (d *directory) changePassword(id int64, current, next string) (bool, error) {
	d.mu.RLock()
	a, ok := d.byID[id]
	var hash string
	if ok {
		hash = a.passwordHash
	}
	d.mu.RUnlock()

	switch {
	case !ok:
		return false, errUnknownAccount
	case hash == "":
		return false, errNotAdmin
	case !VerifyPassword(current, hash):
		return false, errWrongPassword
	}

	newHash, err := HashPassword(next)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	first := a.identity.MustChangePassword
	a.passwordHash = newHash
	a.secret = next
	a.identity.MustChangePassword = false
	return first, nil
}

// secret returns the account and the secret revealed on redemption.
func (d *directory) secret(id int64) (domain.Identity, string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return domain.Identity{}, "", false
	}
	return a.identity, a.secret, true
}

func (a *account) record() domain.UserRecord {
	return domain.UserRecord{Identity: a.identity, CreatedAt: a.createdAt}
}
