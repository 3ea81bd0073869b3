package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"

	"parkinglot/backend/services/parking-service/internal/models"
)

// memoryStore mimics the Postgres repository: capacity and duplicate checks
// happen under one lock, completed sessions stay around.
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*models.Session
	events   []models.SessionEvent
	failWith error
	// afterFind runs once, after FindActive releases the lock.
	afterFind func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[int64]*models.Session)}
}

func (m *memoryStore) activeLocked() []*models.Session {
	var out []*models.Session
	for _, s := range m.sessions {
		if s.Active() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) Enter(_ context.Context, reg string, entryAt time.Time, capacity int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	active := m.activeLocked()
	if len(active) >= capacity {
		return nil, ErrLotFull
	}
	for _, s := range active {
		if s.CarRegNumber == reg {
			return nil, ErrAlreadyParked
		}
	}
	m.nextID++
	s := &models.Session{
		ID:           m.nextID,
		CarRegNumber: reg,
		Status:       models.SessionStatusActive,
		EntryDate:    entryAt,
		CreatedAt:    entryAt,
		UpdatedAt:    entryAt,
	}
	m.sessions[s.ID] = s
	m.events = append(m.events, models.SessionEvent{SessionID: s.ID, CarRegNumber: reg, Kind: models.EventEntered, OccurredAt: entryAt})
	out := *s
	return &out, nil
}

func (m *memoryStore) FindActive(_ context.Context, reg string) (*models.Session, error) {
	m.mu.Lock()
	hook := m.afterFind
	m.afterFind = nil
	s, err := m.findActiveLocked(reg)
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s, err
}

func (m *memoryStore) findActiveLocked(reg string) (*models.Session, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, s := range m.activeLocked() {
		if s.CarRegNumber == reg {
			out := *s
			return &out, nil
		}
	}
	return nil, ErrNotParked
}

func (m *memoryStore) IsActive(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	s, ok := m.sessions[id]
	return ok && s.Active(), nil
}

func (m *memoryStore) Complete(_ context.Context, id int64, exitAt time.Time, amount decimal.Decimal) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !s.Active() {
		return nil, ErrNotParked
	}
	s.Status = models.SessionStatusCompleted
	s.ExitDate = null.TimeFrom(exitAt)
	s.AmountDue = decimal.NewNullDecimal(amount)
	s.UpdatedAt = exitAt
	m.events = append(m.events, models.SessionEvent{SessionID: id, CarRegNumber: s.CarRegNumber, Kind: models.EventExited, Amount: decimal.NewNullDecimal(amount), OccurredAt: exitAt})
	out := *s
	return &out, nil
}

func (m *memoryStore) CountActive(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.activeLocked()), nil
}

func (m *memoryStore) ListActive(_ context.Context, limit int) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.activeLocked() {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memoryStore) ListBySession(_ context.Context, id int64) ([]models.SessionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionEvent
	for _, e := range m.events {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memoryCache struct {
	mu      sync.Mutex
	items   map[string]*models.Session
	gets       int
	failGet    bool
	failDelete bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*models.Session)}
}

func (c *memoryCache) Save(_ context.Context, s *models.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.items[s.CarRegNumber] = &cp
	return nil
}

func (c *memoryCache) Get(_ context.Context, reg string) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, errors.New("cache unavailable")
	}
	s, ok := c.items[reg]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (c *memoryCache) Delete(_ context.Context, reg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDelete {
		return errors.New("cache unavailable")
	}
	delete(c.items, reg)
	return nil
}

func (c *memoryCache) has(reg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[reg]
	return ok
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][2]int
}

func (n *recordingNotifier) NotifyOccupancy(occupied, capacity int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, [2]int{occupied, capacity})
}

func (n *recordingNotifier) last() ([2]int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return [2]int{}, false
	}
	return n.calls[len(n.calls)-1], true
}
