package dto

import (
	"time"

	domainuser "coastalstay/internal/domain/user"
)

type StaffProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User      StaffProfile `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func MapStaffProfile(staff *domainuser.Staff) StaffProfile {
	if staff == nil {
		return StaffProfile{}
	}
	return StaffProfile{
		ID:        string(staff.ID),
		Email:     staff.Email,
		Name:      staff.Name,
		Role:      string(staff.Role),
		CreatedAt: staff.CreatedAt,
	}
}
