package auth

import (
	"context"
	"time"
)

func fastArgon() *Argon2id {
	return NewArgon2id(64, 1, 1)
}

type fakeLookup struct {
	byName map[string]*Account
	byID   map[string]*Account
	err    error
}

func newFakeLookup(accts ...*Account) *fakeLookup {
	f := &fakeLookup{byName: map[string]*Account{}, byID: map[string]*Account{}}
	for _, a := range accts {
		f.byName[a.Username] = a
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeLookup) FindByUsername(_ context.Context, username string) (*Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[username], nil
}

func (f *fakeLookup) FindByID(_ context.Context, id string) (*Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
