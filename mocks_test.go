package account_test

import (
	"context"
	"sort"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-account"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

type MockStatusStore struct {
	mock.Mock
}

func (m *MockStatusStore) UpdateStatus(ctx context.Context, id string, status account.AccountStatus, opts ...account.StatusUpdateOption) (*account.Account, error) {
	args := m.Called(ctx, id, status, opts)

	var acc *account.Account
	if v := args.Get(0); v != nil {
		acc = v.(*account.Account)
	}
	return acc, args.Error(1)
}

type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event account.ActivityEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, badge *account.Badge, kind account.MessageKind) error {
	return m.Called(ctx, badge, kind).Error(0)
}

var errDuplicateRecord = goerrors.New("account already exists", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_ID").
	WithCode(goerrors.CodeConflict)

// memStore is a map backed AccountStore with the same surface semantics as
// the bun repository: lookups return detached copies, creation is a plain
// insert that fills nothing in, updates replace the stored row.
type memStore struct {
	mu      sync.Mutex
	records map[string]*account.Account
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*account.Account{}}
}

func cloneAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	out := *a
	if a.Passport != nil {
		out.Passport = append([]string{}, a.Passport...)
	}
	if a.Favorite != nil {
		out.Favorite = append([]string{}, a.Favorite...)
	}
	return &out
}

func (s *memStore) GetByIdentifier(_ context.Context, identifier string, _ ...repository.SelectCriteria) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[identifier]; ok {
		return cloneAccount(rec), nil
	}

	for _, rec := range s.records {
		if rec.Email == identifier {
			return cloneAccount(rec), nil
		}
	}

	return nil, repository.NewRecordNotFound()
}

func (s *memStore) Create(_ context.Context, record *account.Account, _ ...repository.InsertCriteria) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := cloneAccount(record)

	if _, ok := s.records[rec.ID]; ok {
		return nil, errDuplicateRecord
	}

	s.records[rec.ID] = rec

	return cloneAccount(rec), nil
}

func (s *memStore) Update(_ context.Context, record *account.Account, _ ...repository.UpdateCriteria) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return nil, repository.NewRecordNotFound()
	}

	s.records[record.ID] = cloneAccount(record)

	return cloneAccount(record), nil
}

func (s *memStore) UpdateStatus(_ context.Context, id string, status account.AccountStatus, opts ...account.StatusUpdateOption) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	patch := &account.Account{ID: id, Status: status}
	for _, opt := range opts {
		if opt != nil {
			opt(patch)
		}
	}

	rec.Status = status
	if patch.Token != "" {
		rec.Token = patch.Token
	}
	if patch.TokenMintedAt != nil {
		rec.TokenMintedAt = patch.TokenMintedAt
	}
	if patch.LastLogin != nil {
		rec.LastLogin = patch.LastLogin
	}

	return cloneAccount(rec), nil
}

func (s *memStore) PurgeCandidates(_ context.Context, cutoff time.Time, statuses ...account.AccountStatus) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := func(status account.AccountStatus) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if s == status {
				return true
			}
		}
		return false
	}

	out := []*account.Account{}
	for _, rec := range s.records {
		if rec.Since == nil || !rec.Since.Before(cutoff) {
			continue
		}
		if eligible(rec.Status) {
			out = append(out, cloneAccount(rec))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Since.Before(*out[j].Since)
	})

	return out, nil
}

func (s *memStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

func (s *memStore) RemoveAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = map[string]*account.Account{}
	return nil
}

func (s *memStore) get(id string) *account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAccount(s.records[id])
}
