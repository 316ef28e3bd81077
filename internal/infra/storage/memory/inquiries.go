package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	domaininquiries "coastalstay/internal/domain/inquiries"
	"coastalstay/internal/domain/shared/events"
)

type InquiryRepository struct {
	mu    sync.RWMutex
	items map[domaininquiries.ID]*domaininquiries.Inquiry
}

func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{items: make(map[domaininquiries.ID]*domaininquiries.Inquiry)}
}

func (r *InquiryRepository) Save(ctx context.Context, inquiry *domaininquiries.Inquiry) error {
	if inquiry == nil || inquiry.ID == "" {
		return errors.New("memory: inquiry id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[inquiry.ID] = cloneInquiry(inquiry)
	return nil
}

// List returns matching inquiries, newest first.
func (r *InquiryRepository) List(ctx context.Context, filter domaininquiries.ListFilter) ([]*domaininquiries.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaininquiries.Inquiry, 0, len(r.items))
	for _, inq := range r.items {
		if filter.Matches(inq) {
			out = append(out, cloneInquiry(inq))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func cloneInquiry(inq *domaininquiries.Inquiry) *domaininquiries.Inquiry {
	cp := *inq
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

var _ domaininquiries.Repository = (*InquiryRepository)(nil)
