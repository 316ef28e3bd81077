package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrIDRequired       = errors.New("user: id is required")
	ErrEmailInvalid     = errors.New("user: email is invalid")
	ErrPasswordMissing  = errors.New("user: password hash is required")
	ErrNameRequired     = errors.New("user: name is required")
	ErrInvalidRole      = errors.New("user: invalid role")
	ErrEmailAlreadyUsed = errors.New("user: email already used")
	ErrNotFound         = errors.New("user: not found")
)

type ID string

// Role grants access to the admin panel. Editors manage listings and
// bookings; admins can also manage pricing and read inquiries.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// Staff is an admin panel account.
type Staff struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository looks staff up by id or normalized email.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Staff, error)
	ByEmail(ctx context.Context, email string) (*Staff, error)
	Save(ctx context.Context, staff *Staff) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Now          time.Time
}

// NewStaff validates params and normalizes the email.
func NewStaff(params CreateParams) (*Staff, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Staff{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		PasswordHash: params.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Can reports whether the account holds at least the given role.
func (s *Staff) Can(role Role) bool {
	if s == nil || s.Disabled {
		return false
	}
	switch role {
	case RoleEditor:
		return s.Role == RoleEditor || s.Role == RoleAdmin
	case RoleAdmin:
		return s.Role == RoleAdmin
	default:
		return false
	}
}

func (s *Staff) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordMissing
	}
	s.PasswordHash = hash
	s.UpdatedAt = now.UTC()
	return nil
}

func (s *Staff) Disable(now time.Time) {
	s.Disabled = true
	s.UpdatedAt = now.UTC()
}

// ParseRole accepts a role case-insensitively. An empty role means editor.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(RoleEditor):
		return RoleEditor, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// NormalizeEmail parses raw as a bare address and lowercases it.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}
