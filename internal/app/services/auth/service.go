package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "coastalstay/internal/domain/auth"
	domainuser "coastalstay/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrAccountDisabled    = errors.New("auth: account disabled")
)

const minPasswordRunes = 8

// PasswordHasher hashes and checks staff passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// rehasher is implemented by hashers that can tell when a stored hash is
// weaker than the current policy.
type rehasher interface {
	NeedsRehash(hash string) bool
}

// TokenGenerator issues opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// Service signs staff in and out of the admin panel. Accounts are created by
// EnsureAccount at startup; there is no self-service registration.
type Service struct {
	Staff      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	Staff   *domainuser.Staff
	Session *domainauth.Session
}

// AccountParams describes a staff account to create or refresh.
type AccountParams struct {
	Email    string
	Name     string
	Password string
	Role     domainuser.Role
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email, err := domainuser.NormalizeEmail(params.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	staff, err := s.Staff.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(staff.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if staff.Disabled {
		return nil, ErrAccountDisabled
	}
	s.upgradeHash(ctx, staff, params.Password)
	session, err := s.issueSession(ctx, staff)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("staff signed in", "user_id", staff.ID, "role", staff.Role)
	}
	return &AuthResult{Staff: staff, Session: session}, nil
}

// Logout ends the session behind token. An empty token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken returns the account behind a bearer token. Sessions of deleted
// or disabled accounts are revoked on the way; live ones are renewed.
func (s *Service) ResolveToken(ctx context.Context, token string) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	staff, err := s.Staff.ByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.Token)
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	if staff.Disabled {
		_ = s.Sessions.DeleteByUser(ctx, staff.ID)
		return nil, ErrAccountDisabled
	}
	s.refreshSession(ctx, session, staff)
	return &AuthResult{Staff: staff, Session: session}, nil
}

// refreshSession slides the expiry of an active session and picks up role
// changes made since sign-in. A failed save keeps the stored session as is.
func (s *Service) refreshSession(ctx context.Context, session *domainauth.Session, staff *domainuser.Staff) {
	renewed := session.Renew(s.now(), s.sessionTTL())
	if !renewed && session.Role == staff.Role {
		return
	}
	session.Role = staff.Role
	if err := s.Sessions.Save(ctx, session); err != nil && s.Logger != nil {
		s.Logger.Warn("session refresh failed", "user_id", staff.ID, "error", err)
	}
}

// EnsureAccount creates the account, or resets its password and role when the
// email is already known. Used to bootstrap the first admin from config.
func (s *Service) EnsureAccount(ctx context.Context, params AccountParams) (*domainuser.Staff, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Password) < minPasswordRunes {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	role, err := domainuser.ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}
	now := s.now()

	staff, err := s.Staff.ByEmail(ctx, params.Email)
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		name := strings.TrimSpace(params.Name)
		if name == "" {
			name = strings.SplitN(strings.TrimSpace(params.Email), "@", 2)[0]
		}
		staff, err = domainuser.NewStaff(domainuser.CreateParams{
			ID:           domainuser.ID(uuid.NewString()),
			Email:        params.Email,
			Name:         name,
			PasswordHash: hash,
			Role:         role,
			Now:          now,
		})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := staff.SetPasswordHash(hash, now); err != nil {
			return nil, err
		}
		staff.Role = role
	}
	if err := s.Staff.Save(ctx, staff); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("staff account ensured", "user_id", staff.ID, "email", staff.Email, "role", staff.Role)
	}
	return staff, nil
}

// upgradeHash re-hashes the password after a successful sign-in when the cost
// policy was raised. Failures keep the old hash.
func (s *Service) upgradeHash(ctx context.Context, staff *domainuser.Staff, password string) {
	rh, ok := s.Passwords.(rehasher)
	if !ok || !rh.NeedsRehash(staff.PasswordHash) {
		return
	}
	hash, err := s.Passwords.Hash(password)
	if err == nil {
		err = staff.SetPasswordHash(hash, s.now())
	}
	if err == nil {
		err = s.Staff.Save(ctx, staff)
	}
	if err != nil && s.Logger != nil {
		s.Logger.Warn("password rehash failed", "user_id", staff.ID, "error", err)
	}
}

func (s *Service) issueSession(ctx context.Context, staff *domainuser.Staff) (*domainauth.Session, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: staff.ID,
		Role:   staff.Role,
		TTL:    s.sessionTTL(),
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 12 * time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Staff == nil:
		return errors.New("auth: staff repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}
