package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStore is the record store surface the lifecycle consumes. Everything
// above it only assumes read-then-write semantics, the interface stays
// store-agnostic.
type AccountStore interface {
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	Update(ctx context.Context, record *Account, criteria ...repository.UpdateCriteria) (*Account, error)
	UpdateStatus(ctx context.Context, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
	PurgeCandidates(ctx context.Context, cutoff time.Time, statuses ...AccountStatus) ([]*Account, error)
	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context) error
}

// StatusStore persists status changes for the state machine.
type StatusStore interface {
	UpdateStatus(ctx context.Context, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
}

// Accounts is the full bun-backed repository contract.
type Accounts interface {
	repository.Repository[*Account]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error)

	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	UpdateStatus(ctx context.Context, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error)

	PurgeCandidates(ctx context.Context, cutoff time.Time, statuses ...AccountStatus) ([]*Account, error)

	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ AccountStore                    = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

// NewAccountsRepository wires the generic bun repository with account handlers.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.Ref
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.Ref = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *accounts) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	options := resolveAccountIdentifier(identifier)
	if len(options) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"identifier": identifier,
			})
	}

	for _, opt := range options {
		record := &Account{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

// CreateTx is a plain insert: schema defaults are the lifecycle's job, the
// record arrives complete.
func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) UpdateStatus(ctx context.Context, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status, opts...)
}

func (a *accounts) UpdateStatusTx(ctx context.Context, tx bun.IDB, id string, status AccountStatus, opts ...StatusUpdateOption) (*Account, error) {
	record := &Account{
		ID:     id,
		Status: status,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(record)
		}
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id))
}

// PurgeCandidates selects accounts created before cutoff, oldest first. When
// statuses are given only records in one of them qualify.
func (a *accounts) PurgeCandidates(ctx context.Context, cutoff time.Time, statuses ...AccountStatus) ([]*Account, error) {
	records := []*Account{}

	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.since < ?", cutoff).
		Order("since ASC")

	if len(statuses) > 0 {
		q = q.Where("?TableAlias.status IN (?)", bun.In(statuses))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *accounts) Remove(ctx context.Context, id string) error {
	_, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (a *accounts) RemoveAll(ctx context.Context) error {
	_, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}

// StatusUpdateOption allows callers to mutate the record persisted alongside
// a status change.
type StatusUpdateOption func(*Account)

// WithLastLogin stamps the most recent successful login.
func WithLastLogin(at *time.Time) StatusUpdateOption {
	return func(a *Account) {
		a.LastLogin = at
	}
}

// WithRotatedToken replaces the stored confirmation token.
func WithRotatedToken(token string) StatusUpdateOption {
	return func(a *Account) {
		a.Token = token
	}
}

// WithTokenMintedAt stamps when the stored token was minted.
func WithTokenMintedAt(at *time.Time) StatusUpdateOption {
	return func(a *Account) {
		a.TokenMintedAt = at
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveAccountIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := []identifierOption{{
		column: "id",
		value:  trimmed,
	}}

	if isEmailAddress(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  trimmed,
		})
	}

	return options
}

func isEmailAddress(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
