package account

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle state of an account
type AccountStatus string

const (
	// StatusConfirm is the initial state, waiting for email confirmation
	StatusConfirm AccountStatus = "confirm"
	// StatusOff is a confirmed account with no active session
	StatusOff AccountStatus = "off"
	// StatusOn is an account with an active session
	StatusOn AccountStatus = "on"
	// StatusOut is an account that signed out of the service
	StatusOut AccountStatus = "out"
	// StatusRevive is a returning account waiting for re-confirmation
	StatusRevive AccountStatus = "revive"
	// StatusBlock is an administratively blocked account, terminal
	StatusBlock AccountStatus = "block"
)

// Gender values accepted on the optional gender field
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Profile identifies which office the account belongs to
type Profile string

const (
	// ProfileAdmin is a backoffice administrator
	ProfileAdmin Profile = "admin"
	// ProfileGuest is a middleoffice guest
	ProfileGuest Profile = "guest"
	// ProfileClient is a frontoffice client
	ProfileClient Profile = "client"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s AccountStatus) bool {
	switch s {
	case StatusConfirm, StatusOff, StatusOn, StatusOut, StatusRevive, StatusBlock:
		return true
	}
	return false
}

// ValidGender reports whether g is a member of the gender enum.
func ValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

// ValidProfile reports whether p is a member of the profile enum.
func ValidProfile(p Profile) bool {
	switch p {
	case ProfileAdmin, ProfileGuest, ProfileClient:
		return true
	}
	return false
}

// Account is the account model. ID doubles as the email identifier: when both
// are present they must be equal, when one is missing it is copied from the
// other before the record is persisted.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            string        `bun:"id,pk" json:"id,omitempty"`
	Ref           uuid.UUID     `bun:"ref,nullzero,type:uuid" json:"ref,omitempty"`
	Email         string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string        `bun:"password_hash" json:"password_hash,omitempty"`
	Token         string        `bun:"token" json:"token,omitempty"`
	TokenMintedAt *time.Time    `bun:"token_minted_at,nullzero" json:"token_minted_at,omitempty"`
	Status        AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	Label         string        `bun:"label" json:"label,omitempty"`
	Name          string        `bun:"name" json:"name,omitempty"`
	Birthday      *time.Time    `bun:"birthday,nullzero" json:"birthday,omitempty"`
	Since         *time.Time    `bun:"since,nullzero" json:"since,omitempty"`
	LastLogin     *time.Time    `bun:"last_login,nullzero" json:"last_login,omitempty"`
	Gender        Gender        `bun:"gender" json:"gender,omitempty"`
	Profile       Profile       `bun:"profile" json:"profile,omitempty"`
	Lang          string        `bun:"lang" json:"lang,omitempty"`
	Passport      []string      `bun:"passport" json:"passport,omitempty"`
	Favorite      []string      `bun:"favorite" json:"favorite,omitempty"`

	// NewPassword stages a plaintext password change. It is hashed into
	// PasswordHash exactly once on update and never persisted.
	NewPassword string `bun:"-" json:"-"`
}

// EnsureStatus normalizes a missing status to the initial state.
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = StatusConfirm
	}
}

// EnsureIdentifier fills ID/Email from each other when only one is present.
func (a *Account) EnsureIdentifier() {
	if a.ID == "" {
		a.ID = a.Email
	}
	if a.Email == "" {
		a.Email = a.ID
	}
}

// IsOn reports whether the account has an active session.
func (a *Account) IsOn() bool {
	return a.Status == StatusOn
}

// IsBlocked reports whether the account sits in the terminal blocked state.
func (a *Account) IsBlocked() bool {
	return a.Status == StatusBlock
}

// AwaitingConfirmation reports whether the stored token is live, meaning a
// confirm call may consume it.
func (a *Account) AwaitingConfirmation() bool {
	return a.Status == StatusConfirm || a.Status == StatusRevive
}

// Validate runs the identity and enum invariants. A zero value on an optional
// enum field is accepted, anything outside the closed set is rejected.
func (a *Account) Validate() error {
	if a == nil {
		return ErrMissingID
	}

	if a.ID == "" && a.Email == "" {
		return ErrMissingID
	}

	if a.ID != "" && a.Email != "" && a.ID != a.Email {
		return ErrEmailMismatch
	}

	if a.Status != "" && !ValidStatus(a.Status) {
		return ErrStatusValue.WithMetadata(map[string]any{"status": a.Status})
	}

	if a.Gender != "" && !ValidGender(a.Gender) {
		return ErrGenderValue.WithMetadata(map[string]any{"gender": a.Gender})
	}

	if a.Profile != "" && !ValidProfile(a.Profile) {
		return ErrProfileValue.WithMetadata(map[string]any{"profile": a.Profile})
	}

	return validation.ValidateStruct(a,
		validation.Field(&a.Email, is.Email),
		validation.Field(&a.Lang, validation.Length(0, 8)),
	)
}
