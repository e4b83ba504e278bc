package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// MemoryStore keeps users and grievances in process memory. It backs the
// service when no Postgres DSN is configured. Each record read or write is
// atomic; nothing spans records.
type MemoryStore struct {
	mu              sync.RWMutex
	users           map[int64]domain.User
	grievances      map[int64]domain.Grievance
	nextUserID      int64
	nextGrievanceID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]domain.User),
		grievances: make(map[int64]domain.Grievance),
	}
}

// Users returns the store's UserRepository view.
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

// Grievances returns the store's GrievanceRepository view.
func (s *MemoryStore) Grievances() GrievanceRepository {
	return memoryGrievances{s}
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.emailTaken(user.Email, 0) {
		return ErrDuplicateEmail
	}
	m.s.nextUserID++
	now := time.Now()
	user.ID = m.s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.s.users[user.ID] = *user
	return nil
}

func (m memoryUsers) Update(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	if m.s.emailTaken(user.Email, user.ID) {
		return ErrDuplicateEmail
	}
	user.UpdatedAt = time.Now()
	m.s.users[user.ID] = *user
	return nil
}

func (m memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	user, ok := m.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, user := range m.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// emailTaken must be called with the lock held.
func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for id, user := range s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

type memoryGrievances struct{ s *MemoryStore }

func (m memoryGrievances) Create(_ context.Context, grievance *domain.Grievance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextGrievanceID++
	now := time.Now()
	grievance.ID = m.s.nextGrievanceID
	grievance.CreatedAt = now
	grievance.UpdatedAt = now
	stored := grievance.Clone()
	stored.Owner = nil
	m.s.grievances[grievance.ID] = stored
	return nil
}

func (m memoryGrievances) Update(_ context.Context, grievance *domain.Grievance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.grievances[grievance.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	grievance.UpdatedAt = time.Now()
	stored := grievance.Clone()
	stored.Owner = nil
	stored.OwnerID = existing.OwnerID
	stored.DateRaised = existing.DateRaised
	stored.CreatedAt = existing.CreatedAt
	m.s.grievances[grievance.ID] = stored
	return nil
}

func (m memoryGrievances) GetByID(_ context.Context, id int64) (*domain.Grievance, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	stored, ok := m.s.grievances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	g := m.s.withOwner(stored)
	return &g, nil
}

func (m memoryGrievances) ListAll(_ context.Context) ([]domain.Grievance, error) {
	return m.list(func(domain.Grievance) bool { return true }), nil
}

func (m memoryGrievances) ListByOwner(_ context.Context, userID int64) ([]domain.Grievance, error) {
	return m.list(func(g domain.Grievance) bool {
		return g.OwnerID != nil && *g.OwnerID == userID
	}), nil
}

func (m memoryGrievances) list(keep func(domain.Grievance) bool) []domain.Grievance {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	result := []domain.Grievance{}
	for _, stored := range m.s.grievances {
		if keep(stored) {
			result = append(result, m.s.withOwner(stored))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// withOwner must be called with the lock held.
func (s *MemoryStore) withOwner(stored domain.Grievance) domain.Grievance {
	g := stored.Clone()
	if g.OwnerID != nil {
		if owner, ok := s.users[*g.OwnerID]; ok {
			g.Owner = &owner
		}
	}
	return g
}
