package account

import (
	"time"

	"github.com/google/uuid"
)

// Badge is the redacted, externally safe projection of an account. It never
// carries the password hash, the staged password or the confirmation token.
type Badge struct {
	ID        string        `json:"id,omitempty"`
	Ref       uuid.UUID     `json:"ref,omitempty"`
	Email     string        `json:"email,omitempty"`
	Label     string        `json:"label,omitempty"`
	Name      string        `json:"name,omitempty"`
	Birthday  *time.Time    `json:"birthday,omitempty"`
	Since     *time.Time    `json:"since,omitempty"`
	LastLogin *time.Time    `json:"last_login,omitempty"`
	Status    AccountStatus `json:"status,omitempty"`
	Gender    Gender        `json:"gender,omitempty"`
	Profile   Profile       `json:"profile,omitempty"`
	Lang      string        `json:"lang,omitempty"`
	Passport  []string      `json:"passport,omitempty"`
	Favorite  []string      `json:"favorite,omitempty"`
}

// ProjectBadge maps an account onto its badge. Returns nil for nil input so
// error paths can attach whatever context they have.
func ProjectBadge(a *Account) *Badge {
	if a == nil {
		return nil
	}

	return &Badge{
		ID:        a.ID,
		Ref:       a.Ref,
		Email:     a.Email,
		Label:     a.Label,
		Name:      a.Name,
		Birthday:  a.Birthday,
		Since:     a.Since,
		LastLogin: a.LastLogin,
		Status:    a.Status,
		Gender:    a.Gender,
		Profile:   a.Profile,
		Lang:      a.Lang,
		Passport:  a.Passport,
		Favorite:  a.Favorite,
	}
}
