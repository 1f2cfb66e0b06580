package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldops/attendance-service/internal/config"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
)

var uniqueViolation = &pgconn.PgError{Code: "23505"}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:               "test-secret",
		EmployeeTokenTTLMinutes: 60,
		AdminTokenTTLMinutes:    30,
		BcryptCost:              4,
	}}
}

type memEmployees struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Employee
	err    error
}

func newMemEmployees() *memEmployees {
	return &memEmployees{byID: map[int64]*domain.Employee{}}
}

func (m *memEmployees) Create(_ context.Context, e *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Account == e.Account {
			return uniqueViolation
		}
	}
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEmployees) Update(_ context.Context, e *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, other := range m.byID {
		if other.ID == e.ID {
			continue
		}
		if other.Account == e.Account {
			return uniqueViolation
		}
		if e.WeChatOpenID != nil && other.WeChatOpenID != nil && *other.WeChatOpenID == *e.WeChatOpenID {
			return uniqueViolation
		}
	}
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (m *memEmployees) GetByAccount(_ context.Context, account string) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Account == account {
			clone := *e
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memEmployees) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Employee
	for _, e := range m.byID {
		if filter.Keyword != "" && !strings.Contains(e.Name+e.Account, filter.Keyword) {
			continue
		}
		if filter.Active != nil && e.IsActive != *filter.Active {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEmployees) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type memAdmins struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Admin
}

func newMemAdmins() *memAdmins {
	return &memAdmins{byID: map[int64]*domain.Admin{}}
}

func (m *memAdmins) Create(_ context.Context, a *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Username == a.Username {
			return uniqueViolation
		}
	}
	m.nextID++
	a.ID = m.nextID
	clone := *a
	m.byID[a.ID] = &clone
	return nil
}

func (m *memAdmins) Update(_ context.Context, a *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, other := range m.byID {
		if other.ID != a.ID && other.Username == a.Username {
			return uniqueViolation
		}
	}
	clone := *a
	m.byID[a.ID] = &clone
	return nil
}

func (m *memAdmins) GetByID(_ context.Context, id int64) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (m *memAdmins) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAdmins) List(_ context.Context, filter repository.AdminFilter) ([]domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Admin
	for _, a := range m.byID {
		if filter.Username == "" || strings.Contains(a.Username, filter.Username) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAdmins) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

func (m *memAdmins) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type memPoints struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.CheckInPoint
}

func newMemPoints() *memPoints {
	return &memPoints{byID: map[int64]*domain.CheckInPoint{}}
}

func (m *memPoints) Create(_ context.Context, p *domain.CheckInPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	clone := *p
	clone.EmployeeIDs = append([]int64(nil), p.EmployeeIDs...)
	m.byID[p.ID] = &clone
	return nil
}

func (m *memPoints) Update(_ context.Context, p *domain.CheckInPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *p
	clone.EmployeeIDs = append([]int64(nil), p.EmployeeIDs...)
	m.byID[p.ID] = &clone
	return nil
}

func (m *memPoints) GetByID(_ context.Context, id int64) (*domain.CheckInPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *memPoints) List(_ context.Context, filter repository.PointFilter) ([]domain.CheckInPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckInPoint
	for _, p := range m.byID {
		if filter.Keyword == "" || strings.Contains(p.Title+p.Address, filter.Keyword) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPoints) ListForEmployee(_ context.Context, employeeID int64) ([]domain.CheckInPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckInPoint
	for _, p := range m.byID {
		for _, id := range p.EmployeeIDs {
			if id == employeeID {
				out = append(out, *p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPoints) IsAssigned(_ context.Context, pointID, employeeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[pointID]
	if !ok {
		return false, nil
	}
	for _, id := range p.EmployeeIDs {
		if id == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPoints) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type memRecords struct {
	mu      sync.Mutex
	records []domain.CheckInRecord
	now     func() time.Time
}

func newMemRecords() *memRecords {
	return &memRecords{now: time.Now}
}

func (m *memRecords) Create(_ context.Context, r *domain.CheckInRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.records) + 1)
	r.CreatedAt = m.now()
	m.records = append(m.records, *r)
	return nil
}

func (m *memRecords) List(_ context.Context, filter repository.CheckInFilter) ([]domain.CheckInRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckInRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filter.EmployeeID > 0 && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.PointID > 0 && r.PointID != filter.PointID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRecords) CountDistinctEmployeesSince(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[int64]struct{}{}
	for _, r := range m.records {
		if !r.CreatedAt.Before(since) {
			seen[r.EmployeeID] = struct{}{}
		}
	}
	return len(seen), nil
}

type stubWeChat struct {
	openIDs map[string]string
	err     error
}

func (s *stubWeChat) ExchangeCode(_ context.Context, code string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.openIDs[code], nil
}

type memPhotos struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemPhotos() *memPhotos {
	return &memPhotos{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memPhotos) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if m.err != nil {
		return m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return nil
}

type stubGeocoder struct {
	calls   int
	address string
	err     error
}

func (s *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	s.calls++
	return s.address, s.err
}
