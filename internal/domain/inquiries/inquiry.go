package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"

	"coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/domain/shared/events"
	"coastalstay/internal/domain/user"
)

var (
	ErrInvalidKind      = errors.New("inquiries: unknown inquiry kind")
	ErrNameRequired     = errors.New("inquiries: name is required")
	ErrMessageRequired  = errors.New("inquiries: message is required")
	ErrMessageTooLong   = errors.New("inquiries: message is too long")
	ErrInvalidPhone     = errors.New("inquiries: phone number is invalid")
	ErrPropertyRequired = errors.New("inquiries: property is required for booking inquiries")
	ErrGuestsRequired   = errors.New("inquiries: guests must be at least 1")
	ErrCompanyRequired  = errors.New("inquiries: company is required for partner inquiries")
)

const maxMessageRunes = 4000

type ID string

type Kind string

const (
	KindContact Kind = "contact"
	KindBooking Kind = "booking"
	KindPartner Kind = "partner"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindContact, KindBooking, KindPartner:
		return k, nil
	case "":
		return KindContact, nil
	default:
		return "", ErrInvalidKind
	}
}

// Inquiry is a message left through one of the public forms.
type Inquiry struct {
	ID         ID
	Kind       Kind
	Name       string
	Email      string
	Phone      string
	PropertyID properties.PropertyID
	Stay       daterange.Stay
	Guests     int
	Message    string
	Company    string
	CreatedAt  time.Time
	events.EventRecorder
}

// Repository stores submitted inquiries.
type Repository interface {
	Save(ctx context.Context, inquiry *Inquiry) error
	List(ctx context.Context, filter ListFilter) ([]*Inquiry, error)
}

// ListFilter narrows the admin inbox; zero values match everything.
type ListFilter struct {
	Kind       Kind
	PropertyID properties.PropertyID
	Since      time.Time
	Limit      int
}

type SubmitParams struct {
	ID          ID
	Kind        string
	Name        string
	Email       string
	Phone       string
	PhoneRegion string
	PropertyID  properties.PropertyID
	CheckIn     daterange.CalendarDate
	CheckOut    daterange.CalendarDate
	Guests      int
	Message     string
	Company     string
	Now         time.Time
}

// NewInquiry validates params for its kind and records InquirySubmitted.
func NewInquiry(params SubmitParams) (*Inquiry, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("inquiries: id is required")
	}
	kind, err := ParseKind(params.Kind)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := user.NormalizeEmail(params.Email)
	if err != nil {
		return nil, fmt.Errorf("inquiries: %w", err)
	}
	message := strings.TrimSpace(params.Message)
	if message == "" && kind != KindBooking {
		return nil, ErrMessageRequired
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		return nil, ErrMessageTooLong
	}
	phone, err := NormalizePhone(params.Phone, params.PhoneRegion)
	if err != nil {
		return nil, err
	}

	inq := &Inquiry{
		ID:        params.ID,
		Kind:      kind,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Message:   message,
		Company:   strings.TrimSpace(params.Company),
		CreatedAt: params.Now.UTC(),
	}
	switch kind {
	case KindBooking:
		if strings.TrimSpace(string(params.PropertyID)) == "" {
			return nil, ErrPropertyRequired
		}
		stay, err := daterange.NewStay(params.CheckIn, params.CheckOut)
		if err != nil {
			return nil, err
		}
		if params.Guests < 1 {
			return nil, ErrGuestsRequired
		}
		inq.PropertyID = params.PropertyID
		inq.Stay = stay
		inq.Guests = params.Guests
	case KindPartner:
		if inq.Company == "" {
			return nil, ErrCompanyRequired
		}
	default:
		inq.PropertyID = params.PropertyID
	}

	inq.Record(InquirySubmitted{
		InquiryID:  inq.ID,
		Kind:       inq.Kind,
		Name:       inq.Name,
		Email:      inq.Email,
		Phone:      inq.Phone,
		PropertyID: inq.PropertyID,
		CheckIn:    inq.Stay.CheckIn,
		CheckOut:   inq.Stay.CheckOut,
		Guests:     inq.Guests,
		Message:    inq.Message,
		Company:    inq.Company,
		At:         inq.CreatedAt,
	})
	return inq, nil
}

// NormalizePhone returns raw in E.164 form. An empty input stays empty.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = "US"
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Matches applies the filter to a single inquiry, ignoring Limit.
func (f ListFilter) Matches(inq *Inquiry) bool {
	if inq == nil {
		return false
	}
	if f.Kind != "" && inq.Kind != f.Kind {
		return false
	}
	if f.PropertyID != "" && inq.PropertyID != f.PropertyID {
		return false
	}
	if !f.Since.IsZero() && inq.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

type InquirySubmitted struct {
	InquiryID  ID                     `json:"inquiryId"`
	Kind       Kind                   `json:"kind"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Phone      string                 `json:"phone,omitempty"`
	PropertyID properties.PropertyID  `json:"propertyId,omitempty"`
	CheckIn    daterange.CalendarDate `json:"checkIn"`
	CheckOut   daterange.CalendarDate `json:"checkOut"`
	Guests     int                    `json:"guests,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Company    string                 `json:"company,omitempty"`
	At         time.Time              `json:"at"`
}

func (e InquirySubmitted) EventName() string     { return "inquiry.submitted" }
func (e InquirySubmitted) AggregateID() string   { return string(e.InquiryID) }
func (e InquirySubmitted) OccurredAt() time.Time { return e.At }
