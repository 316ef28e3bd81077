package memory

import (
	"context"
	"strings"
	"sync"

	domainuser "coastalstay/internal/domain/user"
)

// StaffRepository holds admin panel accounts for dev mode and tests. Emails
// are keyed in their normalized form.
type StaffRepository struct {
	mu      sync.RWMutex
	staff   map[domainuser.ID]domainuser.Staff
	byEmail map[string]domainuser.ID
}

func NewStaffRepository() *StaffRepository {
	return &StaffRepository{
		staff:   make(map[domainuser.ID]domainuser.Staff),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *StaffRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	staff, ok := r.staff[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return &staff, nil
}

func (r *StaffRepository) ByEmail(ctx context.Context, email string) (*domainuser.Staff, error) {
	key, err := domainuser.NormalizeEmail(email)
	if err != nil {
		return nil, domainuser.ErrNotFound
	}
	r.mu.RLock()
	id, ok := r.byEmail[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *StaffRepository) Save(_ context.Context, staff *domainuser.Staff) error {
	if staff == nil || strings.TrimSpace(string(staff.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	key, err := domainuser.NormalizeEmail(staff.Email)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[key]; ok && owner != staff.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.staff[staff.ID]; ok {
		if prevKey, err := domainuser.NormalizeEmail(prev.Email); err == nil {
			delete(r.byEmail, prevKey)
		}
	}
	r.byEmail[key] = staff.ID
	r.staff[staff.ID] = *staff
	return nil
}

var _ domainuser.Repository = (*StaffRepository)(nil)
