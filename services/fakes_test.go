package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
)

// fakeStore is an in-memory stand-in for the Postgres schema. Repositories
// built on it ignore the executor; transactions are asserted via sqlmock, or
// really rolled back when the fixture runs on storeConnector.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	categories map[int]*models.Category
	players    map[int]*models.Player
	rounds     map[int]*models.Round
	matches    map[int]*models.Match
	standings  map[[2]int]*models.Standing
	users      map[int]*models.User

	// сбои и хуки для тестов
	upsertErr      error
	roundStatusErr error
	onLockRound    func(roundID int)

	commits, rollbacks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:     100,
		categories: map[int]*models.Category{},
		players:    map[int]*models.Player{},
		rounds:     map[int]*models.Round{},
		matches:    map[int]*models.Match{},
		standings:  map[[2]int]*models.Standing{},
		users:      map[int]*models.User{},
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- seed helpers ---

func (f *fakeStore) addCategory(id int, name string, season, order int) *models.Category {
	c := &models.Category{ID: id, Name: name, SeasonYear: season, DisplayOrder: order}
	f.categories[id] = c
	return c
}

func (f *fakeStore) addPlayer(id, categoryID int, first, last string, status models.PlayerStatus) *models.Player {
	p := &models.Player{
		ID: id, FirstName: first, LastName: last,
		Email:  strings.ToLower(first) + "@club.test",
		Status: status, InitialCategoryID: categoryID, CurrentCategoryID: categoryID,
	}
	f.players[id] = p
	return p
}

func (f *fakeStore) addRound(id, categoryID, number int, status models.RoundStatus) *models.Round {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (number-1)*15)
	r := &models.Round{
		ID: id, CategoryID: categoryID, Number: number,
		PeriodStart: start, PeriodEnd: start.AddDate(0, 0, 14), Status: status,
	}
	f.rounds[id] = r
	return r
}

func (f *fakeStore) addMatch(id, roundID, p1, p2 int, outcome models.Outcome) *models.Match {
	r := f.rounds[roundID]
	m := &models.Match{ID: id, RoundID: roundID, CategoryID: r.CategoryID, Player1ID: p1, Player2ID: p2, Outcome: outcome}
	f.matches[id] = m
	return m
}

// --- categories ---

type fakeCategoryRepo struct{ *fakeStore }

func (f fakeCategoryRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.SeasonYear == c.SeasonYear && existing.Name == c.Name {
			return repositories.ErrCategoryNameConflict
		}
	}
	c.ID = f.id()
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f fakeCategoryRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCategoryRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Category, 0, len(f.categories))
	for _, c := range f.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeasonYear != out[j].SeasonYear {
			return out[i].SeasonYear > out[j].SeasonYear
		}
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakeCategoryRepo) Update(_ context.Context, _ repositories.SQLExecutor, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.categories[c.ID]
	if !ok {
		return repositories.ErrCategoryNotFound
	}
	existing.Name = c.Name
	existing.SeasonYear = c.SeasonYear
	return nil
}

func (f fakeCategoryRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	for _, p := range f.players {
		if p.CurrentCategoryID == id || p.InitialCategoryID == id {
			return repositories.ErrCategoryInUse
		}
	}
	delete(f.categories, id)
	return nil
}

func (f fakeCategoryRepo) Neighbour(_ context.Context, _ repositories.SQLExecutor, c *models.Category, before bool) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Category
	for _, other := range f.categories {
		if other.SeasonYear != c.SeasonYear {
			continue
		}
		if before && other.DisplayOrder < c.DisplayOrder && (best == nil || other.DisplayOrder > best.DisplayOrder) {
			best = other
		}
		if !before && other.DisplayOrder > c.DisplayOrder && (best == nil || other.DisplayOrder < best.DisplayOrder) {
			best = other
		}
	}
	if best == nil {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *best
	return &cp, nil
}

func (f fakeCategoryRepo) UpdateDisplayOrder(_ context.Context, _ repositories.SQLExecutor, id, order int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return repositories.ErrCategoryNotFound
	}
	c.DisplayOrder = order
	return nil
}

func (f fakeCategoryRepo) NextDisplayOrder(_ context.Context, _ repositories.SQLExecutor, season int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := 1
	for _, c := range f.categories {
		if c.SeasonYear == season && c.DisplayOrder >= next {
			next = c.DisplayOrder + 1
		}
	}
	return next, nil
}

// --- players ---

type fakePlayerRepo struct{ *fakeStore }

func (f fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.players {
		if existing.Email == p.Email {
			return repositories.ErrPlayerEmailConflict
		}
	}
	p.ID = f.id()
	cp := *p
	f.players[p.ID] = &cp
	return nil
}

func (f fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakePlayerRepo) Update(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if _, ok := f.categories[p.CurrentCategoryID]; !ok {
		return repositories.ErrPlayerCategoryInvalid
	}
	cp := *p
	f.players[p.ID] = &cp
	return nil
}

func (f fakePlayerRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.PlayerStatus, deactivatedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	p.DeactivatedAt = deactivatedAt
	return nil
}

func (f fakePlayerRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int, status *models.PlayerStatus) ([]*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Player{}
	for _, p := range f.players {
		if p.CurrentCategoryID != categoryID || (status != nil && p.Status != *status) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakePlayerRepo) GetByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) (map[int]*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]*models.Player, len(ids))
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// --- rounds ---

type fakeRoundRepo struct{ *fakeStore }

func (f fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, r *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rounds {
		if existing.CategoryID == r.CategoryID && existing.Number == r.Number {
			return repositories.ErrRoundNumberConflict
		}
	}
	r.ID = f.id()
	cp := *r
	cp.Matches = nil
	f.rounds[r.ID] = &cp
	return nil
}

func (f fakeRoundRepo) get(id int) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeRoundRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Round, error) {
	return f.get(id)
}

func (f fakeRoundRepo) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Round, error) {
	if f.onLockRound != nil {
		f.onLockRound(id)
	}
	return f.get(id)
}

func (f fakeRoundRepo) GetByNumber(_ context.Context, _ repositories.SQLExecutor, categoryID, number int) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rounds {
		if r.CategoryID == categoryID && r.Number == number {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (f fakeRoundRepo) filter(keep func(*models.Round) bool) []*models.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Round{}
	for _, r := range f.rounds {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].Number < out[j].Number
	})
	return out
}

func (f fakeRoundRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) ([]*models.Round, error) {
	return f.filter(func(r *models.Round) bool { return r.CategoryID == categoryID }), nil
}

func (f fakeRoundRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) (map[int]*models.Round, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := map[int]*models.Round{}
	for _, r := range f.filter(func(r *models.Round) bool { return want[r.ID] }) {
		out[r.ID] = r
	}
	return out, nil
}

func (f fakeRoundRepo) ListElapsedActive(_ context.Context, _ repositories.SQLExecutor, today time.Time) ([]*models.Round, error) {
	return f.filter(func(r *models.Round) bool {
		return r.Status == models.RoundStatusActive && r.PeriodEnd.Before(today)
	}), nil
}

func (f fakeRoundRepo) HasOtherActive(_ context.Context, _ repositories.SQLExecutor, categoryID, exceptRoundID int) (bool, error) {
	others := f.filter(func(r *models.Round) bool {
		return r.CategoryID == categoryID && r.ID != exceptRoundID && r.Status == models.RoundStatusActive
	})
	return len(others) > 0, nil
}

func (f fakeRoundRepo) CountByCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID int) (int, error) {
	rounds, _ := f.ListByCategory(ctx, exec, categoryID)
	return len(rounds), nil
}

func (f fakeRoundRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, r *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roundStatusErr != nil {
		return f.roundStatusErr
	}
	stored, ok := f.rounds[r.ID]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	if r.Status == models.RoundStatusActive {
		for _, other := range f.rounds {
			if other.ID != r.ID && other.CategoryID == r.CategoryID && other.Status == models.RoundStatusActive {
				return repositories.ErrRoundAlreadyActive
			}
		}
	}
	stored.Status = r.Status
	stored.ClosedAt = r.ClosedAt
	return nil
}

func (f fakeRoundRepo) UpdateDates(_ context.Context, _ repositories.SQLExecutor, r *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rounds[r.ID]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	stored.PeriodStart = r.PeriodStart
	stored.PeriodEnd = r.PeriodEnd
	return nil
}

func (f fakeRoundRepo) DeleteByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.rounds {
		if r.CategoryID == categoryID {
			delete(f.rounds, id)
		}
	}
	return nil
}

// --- matches ---

type fakeMatchRepo struct{ *fakeStore }

func (f fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	m.Outcome = models.Undecided{}
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

func (f fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f fakeMatchRepo) filter(keep func(*models.Match) bool) []*models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Match{}
	for _, m := range f.matches {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeMatchRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]*models.Match, error) {
	return f.filter(func(m *models.Match) bool { return m.RoundID == roundID }), nil
}

func (f fakeMatchRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) ([]*models.Match, error) {
	return f.filter(func(m *models.Match) bool { return m.CategoryID == categoryID }), nil
}

func (f fakeMatchRepo) ListByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) ([]*models.Match, error) {
	return f.filter(func(m *models.Match) bool { return m.HasPlayer(playerID) }), nil
}

func (f fakeMatchRepo) UpdateOutcome(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Outcome = m.Outcome
	return nil
}

func (f fakeMatchRepo) CountUnresolved(_ context.Context, _ repositories.SQLExecutor, roundID int) (int, error) {
	return len(f.filter(func(m *models.Match) bool { return m.RoundID == roundID && !m.IsResolved() })), nil
}

func (f fakeMatchRepo) MarkUndecidedUnreported(_ context.Context, _ repositories.SQLExecutor, roundID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.matches {
		if m.RoundID == roundID && !m.IsResolved() {
			m.Outcome = models.Unreported{}
			n++
		}
	}
	return n, nil
}

func (f fakeMatchRepo) HasResults(_ context.Context, _ repositories.SQLExecutor, categoryID int) (bool, error) {
	return len(f.filter(func(m *models.Match) bool { return m.CategoryID == categoryID && m.IsDecided() })) > 0, nil
}

func (f fakeMatchRepo) DeleteByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, m := range f.matches {
		if m.CategoryID == categoryID {
			delete(f.matches, id)
		}
	}
	return nil
}

// --- standings ---

type fakeStandingRepo struct{ *fakeStore }

func (f fakeStandingRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, s *models.Standing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[s.PlayerID]; !ok {
		return repositories.ErrStandingPlayerInvalid
	}
	cp := *s
	cp.Player = nil
	f.standings[[2]int{s.CategoryID, s.PlayerID}] = &cp
	return nil
}

// BatchUpsert with upsertErr set writes the first row and then fails.
func (f fakeStandingRepo) BatchUpsert(ctx context.Context, exec repositories.SQLExecutor, rows []*models.Standing) error {
	for i, s := range rows {
		if f.upsertErr != nil && i == 1 {
			return f.upsertErr
		}
		if err := f.Upsert(ctx, exec, s); err != nil {
			return err
		}
	}
	return f.upsertErr
}

func (f fakeStandingRepo) ListByCategory(_ context.Context, _ repositories.SQLExecutor, categoryID int) ([]*models.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Standing{}
	for key, s := range f.standings {
		if key[0] != categoryID {
			continue
		}
		cp := *s
		if p, ok := f.players[s.PlayerID]; ok {
			pc := *p
			cp.Player = &pc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f fakeStandingRepo) DeleteByCategoryExcept(_ context.Context, _ repositories.SQLExecutor, categoryID int, keep []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make(map[int]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	for key := range f.standings {
		if key[0] == categoryID && !kept[key[1]] {
			delete(f.standings, key)
		}
	}
	return nil
}

func (f fakeStandingRepo) DeleteByCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID int) error {
	return f.DeleteByCategoryExcept(ctx, exec, categoryID, nil)
}

func (f *fakeStore) standingOf(categoryID, playerID int) *models.Standing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.standings[[2]int{categoryID, playerID}]
}

// --- users ---

type fakeUserRepo struct{ *fakeStore }

func (f fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if u.PlayerID != nil && existing.PlayerID != nil && *existing.PlayerID == *u.PlayerID {
			return repositories.ErrUserPlayerConflict
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = f.id()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f fakeUserRepo) GetByEmail(_ context.Context, _ repositories.SQLExecutor, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f fakeUserRepo) GetByPlayerID(_ context.Context, _ repositories.SQLExecutor, playerID int) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.PlayerID != nil && *u.PlayerID == playerID })
}

func (f fakeUserRepo) UpdatePassword(_ context.Context, _ repositories.SQLExecutor, id int, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// --- collaborators ---

type notification struct {
	CategoryID int
	EventType  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyCategory(categoryID int, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{CategoryID: categoryID, EventType: eventType})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.EventType)
	}
	return out
}

type failingArchiver struct{}

func (failingArchiver) ArchiveStandings(context.Context, storage.StandingsSnapshot) (string, error) {
	return "", io.ErrUnexpectedEOF
}

// leagueFixture wires every service over one fakeStore.
type leagueFixture struct {
	store     *fakeStore
	db        *sql.DB
	mock      sqlmock.Sqlmock
	notifier  *recordingNotifier
	archive   *storage.MemoryStore
	standings StandingsService
	rounds    RoundService
	matches   MatchService
	fixtures  FixtureService
	expiry    ExpiryService
	now       time.Time
}

const testPointsPerWin = 3

func newLeagueFixture(t *testing.T) *leagueFixture {
	t.Helper()
	db, mock := newMockDB(t)
	return buildLeagueFixture(newFakeStore(), db, mock)
}

// newTxLeagueFixture runs services on a database whose rollback restores the
// store, so a failed transaction can be checked against stored state. There
// is no sqlmock: expectCommit and expectRollback must not be used.
func newTxLeagueFixture(t *testing.T) *leagueFixture {
	t.Helper()
	store := newFakeStore()
	db := sql.OpenDB(storeConnector{store: store})
	t.Cleanup(func() { db.Close() })
	return buildLeagueFixture(store, db, nil)
}

func buildLeagueFixture(store *fakeStore, db *sql.DB, mock sqlmock.Sqlmock) *leagueFixture {
	lf := &leagueFixture{
		store:    store,
		db:       db,
		mock:     mock,
		notifier: &recordingNotifier{},
		archive:  storage.NewMemoryStore("https://cdn.test"),
		now:      time.Date(2025, 3, 16, 3, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return lf.now }
	logger := testLogger()

	ss := NewStandingsService(fakeCategoryRepo{store}, fakePlayerRepo{store}, fakeMatchRepo{store}, fakeStandingRepo{store},
		testPointsPerWin, lf.notifier, storage.NewArchiver(lf.archive), logger).(*standingsService)
	ss.now = clock
	lf.standings = ss

	rs := NewRoundService(db, fakeCategoryRepo{store}, fakeRoundRepo{store}, fakeMatchRepo{store}, ss, lf.notifier, logger).(*roundService)
	rs.now = clock
	lf.rounds = rs

	lf.matches = NewMatchService(db, fakeCategoryRepo{store}, fakePlayerRepo{store}, fakeRoundRepo{store}, fakeMatchRepo{store}, lf.notifier, logger)
	lf.fixtures = NewFixtureService(db, fakeCategoryRepo{store}, fakePlayerRepo{store}, fakeRoundRepo{store}, fakeMatchRepo{store}, fakeStandingRepo{store}, 15, 2, logger)
	lf.expiry = NewExpiryService(fakeRoundRepo{store}, rs, time.UTC, logger)
	return lf
}

func (lf *leagueFixture) expectCommit() {
	lf.mock.ExpectBegin()
	lf.mock.ExpectCommit()
}

func (lf *leagueFixture) expectRollback() {
	lf.mock.ExpectBegin()
	lf.mock.ExpectRollback()
}
