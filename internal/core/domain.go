package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// User is a registered account. Rows are append-only; there is no
	// update or delete path.
	User struct {
		ID        int64
		FirstName string
		LastName  string
		Username  string
		// PasswordHash is the bcrypt hash, never the plaintext password.
		PasswordHash string
	}

	// Entry is one user-submitted product record.
	Entry struct {
		ID       int64
		UserID   int64
		Name     string
		Category string
		Amount   decimal.Decimal
		Year     int
		Month    string // optional, free text
	}

	// SeriesPoint is one (year, amount) pair of an aggregated series.
	SeriesPoint struct {
		Year   int
		Amount float64
	}

	// ForecastPoint is a predicted amount for a year beyond the observed
	// data. Transient; recomputed per analysis request.
	ForecastPoint struct {
		Year   int
		Amount float64
	}
)

// Selection modes for the analysis view.
type SelectionMode string

const (
	ByName     SelectionMode = "by_name"
	ByCategory SelectionMode = "by_category"
)

var (
	ErrEmptyUsername  = errors.New("empty username")
	ErrEmptyPassword  = errors.New("empty password")
	ErrEmptyName      = errors.New("empty product name")
	ErrEmptyCategory  = errors.New("empty product category")
	ErrInvalidAmount  = errors.New("invalid product amount")
	ErrInvalidYear    = errors.New("invalid product year")
	ErrInvalidMode    = errors.New("invalid selection mode")
	ErrEmptySelection = errors.New("empty selection value")
)

func (m SelectionMode) Validate() error {
	switch m {
	case ByName, ByCategory:
		return nil
	}
	return ErrInvalidMode
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Name) > 200 {
		return errors.New("product name too long (max 200 characters)")
	}
	if e.Amount.IsNegative() || e.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if e.Year < 1900 || e.Year > time.Now().Year()+10 {
		return ErrInvalidYear
	}
	return nil
}
