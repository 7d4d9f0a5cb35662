package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Lifecycle orchestrates every account operation: it validates input,
// enforces the transition graph, runs the credential and token services and
// delegates persistence to the record store. Mutations on the same account id
// are serialized through a per-key mutex, the store itself is only assumed to
// offer read-then-write semantics.
type Lifecycle struct {
	store         AccountStore
	machine       StateMachine
	notifier      Notifier
	notifications bool
	activitySink  ActivitySink
	logger        Logger
	now           func() time.Time
	tokenSize     int
	tokenValidity string
	purgeStatuses []AccountStatus
	locks         *keyMutex
}

// LifecycleOption customizes Lifecycle construction.
type LifecycleOption func(*Lifecycle)

// WithLogger overrides the default printf logger.
func WithLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithNotifier injects the outbound notification strategy.
func WithNotifier(n Notifier) LifecycleOption {
	return func(l *Lifecycle) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithNotificationsDisabled turns off outbound notifications entirely.
func WithNotificationsDisabled() LifecycleOption {
	return func(l *Lifecycle) {
		l.notifications = false
	}
}

// WithActivitySink sets the audit sink shared with the state machine.
func WithActivitySink(sink ActivitySink) LifecycleOption {
	return func(l *Lifecycle) {
		l.activitySink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithTokenSize sets the number of random bytes behind minted tokens.
func WithTokenSize(size int) LifecycleOption {
	return func(l *Lifecycle) {
		if size > 0 {
			l.tokenSize = size
		}
	}
}

// WithTokenValidity bounds how long minted tokens stay consumable, given as a
// duration pattern like "24h". The default is no bound: tokens stay live until
// consumed or rotated.
func WithTokenValidity(pattern string) LifecycleOption {
	return func(l *Lifecycle) {
		l.tokenValidity = pattern
	}
}

// WithPurgeStatuses restricts purge eligibility to the given statuses.
// Passing none makes purge select on age alone.
func WithPurgeStatuses(statuses ...AccountStatus) LifecycleOption {
	return func(l *Lifecycle) {
		l.purgeStatuses = statuses
	}
}

// WithStateMachine overrides the transition engine.
func WithStateMachine(sm StateMachine) LifecycleOption {
	return func(l *Lifecycle) {
		if sm != nil {
			l.machine = sm
		}
	}
}

// New creates a Lifecycle over the given record store, usually the Accounts
// repository of a RepositoryManager. Purge defaults to unconfirmed accounts
// only, notifications default to a logging no-op.
func New(store AccountStore, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:         store,
		logger:        defLogger{},
		now:           time.Now,
		notifications: true,
		tokenSize:     DefaultTokenSize,
		purgeStatuses: []AccountStatus{StatusConfirm},
		activitySink:  noopActivitySink{},
		locks:         newKeyMutex(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	l.notifier = normalizeNotifier(l.notifier, l.logger)

	if l.machine == nil {
		l.machine = NewStateMachine(l.store,
			WithStateMachineClock(l.now),
			WithStateMachineActivitySink(l.activitySink),
			WithStateMachineLogger(l.logger),
		)
	}

	return l
}

// Signup creates the account in the initial confirm state. The caller's
// plaintext arrives on NewPassword and is hashed exactly once, the stored
// record never sees it. Schema defaults (token, since, empty collections)
// are applied here, before insertion: the store is a plain insert and never
// fills fields behind the caller's back.
func (l *Lifecycle) Signup(ctx context.Context, record *Account) (*Badge, error) {
	if record == nil || (record.ID == "" && record.Email == "") {
		return nil, ErrMissingID
	}

	if record.NewPassword == "" {
		return nil, ErrMissingPassword
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	record.EnsureIdentifier()
	record.Status = StatusConfirm

	unlock := l.locks.Lock(record.ID)
	defer unlock()

	hash, err := HashPassword(record.NewPassword)
	if err != nil {
		return nil, err
	}
	record.PasswordHash = hash
	record.NewPassword = ""

	if err := l.applySchemaDefaults(record); err != nil {
		return nil, err
	}

	created, err := l.store.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	l.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignup,
		AccountID: created.ID,
		ToStatus:  created.Status,
	})

	badge := ProjectBadge(created)
	l.notify(ctx, badge, MessageConfirm)

	return badge, nil
}

// applySchemaDefaults fills the fields a fresh record owes the schema: a
// minted token with its timestamp, the creation time, empty collections and a
// stable ref derived from the email.
func (l *Lifecycle) applySchemaDefaults(record *Account) error {
	now := l.now().UTC()

	if record.Token == "" {
		token, err := MintToken(l.tokenSize)
		if err != nil {
			return err
		}
		record.Token = token
		record.TokenMintedAt = &now
	}

	if record.Since == nil {
		record.Since = &now
	}

	if record.Passport == nil {
		record.Passport = []string{}
	}

	if record.Favorite == nil {
		record.Favorite = []string{}
	}

	if record.Ref == uuid.Nil {
		if ref, err := hashid.NewUUID(record.Email); err == nil {
			record.Ref = ref
		}
	}

	return nil
}

// Confirm consumes the minted token and moves the account into off. Only
// accounts waiting on a confirmation (confirm or revive) qualify.
func (l *Lifecycle) Confirm(ctx context.Context, id, token string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if !acc.AwaitingConfirmation() {
		return nil, ErrInvalidStatus.WithMetadata(map[string]any{
			"status": acc.Status,
		})
	}

	if !TokensEqual(acc.Token, token) {
		return nil, ErrTokenMismatch
	}

	if err := l.ensureTokenFresh(acc); err != nil {
		return nil, err
	}

	// the consumed token is rotated away so it cannot double as a reset token
	rotated, err := MintToken(l.tokenSize)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()

	if _, err := l.machine.Transition(ctx, ActorRef{ID: id, Type: "account"}, acc, StatusOff,
		WithTransitionReason("email confirmed"),
		WithStatusUpdateOptions(WithRotatedToken(rotated), WithTokenMintedAt(&now)),
	); err != nil {
		return nil, err
	}

	return ProjectBadge(acc), nil
}

// VerifyCredential loads the account and compares the supplied plaintext
// against the stored digest. A mismatch is an expected outcome, never a
// fault. Used by Login and exposed for internal collaborators.
func (l *Lifecycle) VerifyCredential(ctx context.Context, id, password string) (*Account, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	if password == "" {
		return nil, ErrMissingPassword
	}

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if acc.PasswordHash == "" {
		return nil, ErrMissingPassword
	}

	if err := ComparePasswordAndHash(password, acc.PasswordHash); err != nil {
		return nil, err
	}

	return acc, nil
}

// Login verifies the credential and moves off into on, stamping the login
// time. Every other source status fails with NotLogged: not yet confirmed,
// already on, signed out or blocked.
func (l *Lifecycle) Login(ctx context.Context, id, password string) (*Badge, error) {
	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.VerifyCredential(ctx, id, password)
	if err != nil {
		l.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			AccountID: id,
		})
		return nil, err
	}

	if acc.Status != StatusOff {
		return nil, ErrNotLogged.WithMetadata(map[string]any{
			"status": acc.Status,
		})
	}

	now := l.now().UTC()
	if _, err := l.machine.Transition(ctx, ActorRef{ID: acc.ID, Type: "account"}, acc, StatusOn,
		WithStatusUpdateOptions(WithLastLogin(&now)),
		WithTransitionReason("login"),
	); err != nil {
		return nil, err
	}
	acc.LastLogin = &now

	l.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		AccountID: acc.ID,
		ToStatus:  acc.Status,
	})

	return ProjectBadge(acc), nil
}

// Logout moves on back into off.
func (l *Lifecycle) Logout(ctx context.Context, id string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if !acc.IsOn() {
		return nil, ErrNotLogged.WithMetadata(map[string]any{
			"status": acc.Status,
		})
	}

	if _, err := l.machine.Transition(ctx, ActorRef{ID: acc.ID, Type: "account"}, acc, StatusOff,
		WithTransitionReason("logout"),
	); err != nil {
		return nil, err
	}

	return ProjectBadge(acc), nil
}

// Signout retires the account into out. It is reachable from every
// non-terminal status; a blocked account stays blocked.
func (l *Lifecycle) Signout(ctx context.Context, id string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := l.machine.Transition(ctx, ActorRef{ID: acc.ID, Type: "account"}, acc, StatusOut,
		WithTransitionReason("signout"),
	); err != nil {
		return nil, err
	}

	return ProjectBadge(acc), nil
}

// Revive loops a signed-out account back into confirm with a fresh token so
// the holder can prove the email again.
func (l *Lifecycle) Revive(ctx context.Context, id string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if acc.Status != StatusOut {
		return nil, ErrInvalidStatus.WithMetadata(map[string]any{
			"status": acc.Status,
		})
	}

	token, err := MintToken(l.tokenSize)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()

	if _, err := l.machine.Transition(ctx, ActorRef{ID: acc.ID, Type: "account"}, acc, StatusConfirm,
		WithStatusUpdateOptions(WithRotatedToken(token), WithTokenMintedAt(&now)),
		WithTransitionReason("revive"),
	); err != nil {
		return nil, err
	}
	acc.Token = token
	acc.TokenMintedAt = &now

	badge := ProjectBadge(acc)
	l.notify(ctx, badge, MessageRevive)

	return badge, nil
}

// ResetPassword starts a password reset. An account still waiting on its
// first confirmation keeps its token and gets the confirm message resent;
// every other status gets a freshly minted reset token persisted before the
// notification goes out.
func (l *Lifecycle) ResetPassword(ctx context.Context, id string) (*Badge, MessageKind, error) {
	if id == "" {
		return nil, "", ErrMissingID
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, "", err
	}

	kind := MessageResetPassword
	if acc.Status == StatusConfirm {
		kind = MessageConfirm
	} else {
		token, err := MintToken(l.tokenSize)
		if err != nil {
			return nil, "", err
		}
		now := l.now().UTC()

		if _, err := l.store.UpdateStatus(ctx, acc.ID, acc.Status,
			WithRotatedToken(token), WithTokenMintedAt(&now)); err != nil {
			return nil, "", err
		}
		acc.Token = token
		acc.TokenMintedAt = &now
	}

	l.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventPasswordReset,
		AccountID: acc.ID,
	})

	badge := ProjectBadge(acc)
	l.notify(ctx, badge, kind)

	return badge, kind, nil
}

// NewPassword completes a reset: the token proves possession of the email,
// the staged plaintext is hashed through Update.
func (l *Lifecycle) NewPassword(ctx context.Context, id, token, plaintext string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	if plaintext == "" {
		return nil, ErrMissingPassword
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if !TokensEqual(acc.Token, token) {
		return nil, ErrTokenMismatch
	}

	if err := l.ensureTokenFresh(acc); err != nil {
		return nil, err
	}

	acc.NewPassword = plaintext
	return l.update(ctx, acc)
}

// ensureTokenFresh enforces the optional validity window on the stored token.
// Records minted before the window was introduced carry no timestamp and are
// accepted as-is.
func (l *Lifecycle) ensureTokenFresh(acc *Account) error {
	if l.tokenValidity == "" || acc.TokenMintedAt == nil {
		return nil
	}

	stale, err := IsOutsideThresholdPeriod(*acc.TokenMintedAt, l.tokenValidity)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid token validity pattern").
			WithTextCode("TOKEN_VALIDITY_PATTERN")
	}

	if stale {
		return ErrTokenStale.WithMetadata(map[string]any{
			"minted_at": acc.TokenMintedAt,
		})
	}

	return nil
}

// Update persists a record. A staged NewPassword is hashed into the digest
// exactly once and stripped before the record reaches the store.
func (l *Lifecycle) Update(ctx context.Context, record *Account) (*Badge, error) {
	if record == nil || record.ID == "" {
		return nil, ErrMissingID
	}

	unlock := l.locks.Lock(record.ID)
	defer unlock()

	return l.update(ctx, record)
}

func (l *Lifecycle) update(ctx context.Context, record *Account) (*Badge, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if record.NewPassword != "" {
		hash, err := HashPassword(record.NewPassword)
		if err != nil {
			return nil, err
		}
		record.PasswordHash = hash
		record.NewPassword = ""
	}

	updated, err := l.store.Update(ctx, record, repository.UpdateByID(record.ID))
	if err != nil {
		return nil, err
	}

	return ProjectBadge(updated), nil
}

// AddPassport merges paths into the authorized passport list, preserving
// first-seen order and dropping duplicates silently.
func (l *Lifecycle) AddPassport(ctx context.Context, id string, paths []string) (*Badge, error) {
	return l.mutatePaths(ctx, id, paths, func(acc *Account, batch []string) {
		acc.Passport = mergePaths(acc.Passport, batch)
	})
}

// RemPassport removes paths from the passport list. Removing an absent path
// is a no-op, not an error.
func (l *Lifecycle) RemPassport(ctx context.Context, id string, paths []string) (*Badge, error) {
	return l.mutatePaths(ctx, id, paths, func(acc *Account, batch []string) {
		acc.Passport = removePaths(acc.Passport, batch)
	})
}

// AddFavorite merges references into the favorite list with the passport
// dedup discipline.
func (l *Lifecycle) AddFavorite(ctx context.Context, id string, refs []string) (*Badge, error) {
	return l.mutatePaths(ctx, id, refs, func(acc *Account, batch []string) {
		acc.Favorite = mergePaths(acc.Favorite, batch)
	})
}

// RemFavorite removes references from the favorite list.
func (l *Lifecycle) RemFavorite(ctx context.Context, id string, refs []string) (*Badge, error) {
	return l.mutatePaths(ctx, id, refs, func(acc *Account, batch []string) {
		acc.Favorite = removePaths(acc.Favorite, batch)
	})
}

func (l *Lifecycle) mutatePaths(ctx context.Context, id string, batch []string, apply func(*Account, []string)) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	// a nil batch is a missing argument, an empty one is a valid no-op
	if batch == nil {
		return nil, ErrMissingParams
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(acc, batch)

	return l.update(ctx, acc)
}

// Purge removes stale accounts: anything created before now-ageDays whose
// status is purge-eligible. Results come back oldest first.
func (l *Lifecycle) Purge(ctx context.Context, ageDays int) ([]*Badge, error) {
	if ageDays < 0 {
		return nil, ErrMissingParams.WithMetadata(map[string]any{
			"ageDays": ageDays,
		})
	}

	cutoff := l.now().UTC().AddDate(0, 0, -ageDays)

	candidates, err := l.store.PurgeCandidates(ctx, cutoff, l.purgeStatuses...)
	if err != nil {
		return nil, err
	}

	badges := make([]*Badge, 0, len(candidates))
	for _, acc := range candidates {
		if err := l.store.Remove(ctx, acc.ID); err != nil {
			return badges, err
		}

		l.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventPurge,
			AccountID:  acc.ID,
			FromStatus: acc.Status,
		})

		badges = append(badges, ProjectBadge(acc))
	}

	return badges, nil
}

// Badge returns the redacted projection for the given account.
func (l *Lifecycle) Badge(ctx context.Context, id string) (*Badge, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	acc, err := l.store.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	return ProjectBadge(acc), nil
}

func (l *Lifecycle) notify(ctx context.Context, badge *Badge, kind MessageKind) {
	if !l.notifications {
		return
	}

	if err := l.notifier.Notify(ctx, badge, kind); err != nil {
		l.logger.Error("notifier error for %s: %v", kind, err)
	}
}

func (l *Lifecycle) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = l.now()
	}

	if err := l.activitySink.Record(ctx, event); err != nil {
		l.logger.Error("lifecycle activity sink error: %v", err)
	}
}
