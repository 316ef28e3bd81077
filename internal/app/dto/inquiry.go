package dto

import (
	"time"

	domaininquiries "coastalstay/internal/domain/inquiries"
)

type Inquiry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	PropertyID string    `json:"property_id,omitempty"`
	CheckIn    string    `json:"check_in,omitempty"`
	CheckOut   string    `json:"check_out,omitempty"`
	Nights     int       `json:"nights,omitempty"`
	Guests     int       `json:"guests,omitempty"`
	Message    string    `json:"message,omitempty"`
	Company    string    `json:"company,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type InquiryReceipt struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func MapInquiry(inq *domaininquiries.Inquiry) Inquiry {
	out := Inquiry{
		ID:         string(inq.ID),
		Kind:       string(inq.Kind),
		Name:       inq.Name,
		Email:      inq.Email,
		Phone:      inq.Phone,
		PropertyID: string(inq.PropertyID),
		Guests:     inq.Guests,
		Message:    inq.Message,
		Company:    inq.Company,
		CreatedAt:  inq.CreatedAt,
	}
	if !inq.Stay.CheckIn.IsZero() {
		out.CheckIn = inq.Stay.CheckIn.String()
		out.CheckOut = inq.Stay.CheckOut.String()
		out.Nights = inq.Stay.Nights()
	}
	return out
}

func MapInquiries(list []*domaininquiries.Inquiry) []Inquiry {
	out := make([]Inquiry, 0, len(list))
	for _, inq := range list {
		out = append(out, MapInquiry(inq))
	}
	return out
}
