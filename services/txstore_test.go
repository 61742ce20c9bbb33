package services

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/Dosada05/league-system/models"
)

// storeConnector is a database/sql connector without SQL: Begin snapshots the
// fakeStore, Rollback restores the snapshot, Commit keeps the changes.
type storeConnector struct{ store *fakeStore }

func (c storeConnector) Connect(context.Context) (driver.Conn, error) {
	return &storeConn{store: c.store}, nil
}

func (c storeConnector) Driver() driver.Driver { return storeDriver{c.store} }

type storeDriver struct{ store *fakeStore }

func (d storeDriver) Open(string) (driver.Conn, error) { return &storeConn{store: d.store}, nil }

type storeConn struct{ store *fakeStore }

func (c *storeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fake store does not run SQL")
}

func (c *storeConn) Close() error { return nil }

func (c *storeConn) Begin() (driver.Tx, error) {
	return &storeTx{store: c.store, saved: c.store.snapshot()}, nil
}

type storeTx struct {
	store *fakeStore
	saved *storeState
}

func (tx *storeTx) Commit() error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.commits++
	return nil
}

func (tx *storeTx) Rollback() error {
	tx.store.restore(tx.saved)
	return nil
}

type storeState struct {
	nextID     int
	categories map[int]*models.Category
	players    map[int]*models.Player
	rounds     map[int]*models.Round
	matches    map[int]*models.Match
	standings  map[[2]int]*models.Standing
	users      map[int]*models.User
}

func copyMap[K comparable, V any](in map[K]*V) map[K]*V {
	out := make(map[K]*V, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (f *fakeStore) snapshot() *storeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &storeState{
		nextID:     f.nextID,
		categories: copyMap(f.categories),
		players:    copyMap(f.players),
		rounds:     copyMap(f.rounds),
		matches:    copyMap(f.matches),
		standings:  copyMap(f.standings),
		users:      copyMap(f.users),
	}
}

func (f *fakeStore) restore(s *storeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = s.nextID
	f.categories = s.categories
	f.players = s.players
	f.rounds = s.rounds
	f.matches = s.matches
	f.standings = s.standings
	f.users = s.users
	f.rollbacks++
}
