package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
	"coastalstay/internal/domain/shared/daterange"
)

type InquiryRepository struct {
	col *mongo.Collection
}

func NewInquiryRepository(db *mongo.Database) *InquiryRepository {
	return &InquiryRepository{col: db.Collection(inquiriesCollection)}
}

func (r *InquiryRepository) Save(ctx context.Context, inquiry *domaininquiries.Inquiry) error {
	if inquiry == nil || inquiry.ID == "" {
		return errors.New("mongo: inquiry id is required")
	}
	doc := newInquiryDocument(inquiry)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: save inquiry: %w", err)
	}
	return nil
}

func (r *InquiryRepository) List(ctx context.Context, filter domaininquiries.ListFilter) ([]*domaininquiries.Inquiry, error) {
	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = string(filter.Kind)
	}
	if filter.PropertyID != "" {
		query["property_id"] = string(filter.PropertyID)
	}
	if !filter.Since.IsZero() {
		query["created_at"] = bson.M{"$gte": filter.Since.UTC()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list inquiries: %w", err)
	}
	var docs []inquiryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode inquiries: %w", err)
	}
	out := make([]*domaininquiries.Inquiry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type inquiryDocument struct {
	ID         string    `bson:"_id"`
	Kind       string    `bson:"kind"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	Phone      string    `bson:"phone,omitempty"`
	PropertyID string    `bson:"property_id,omitempty"`
	CheckIn    string    `bson:"check_in,omitempty"`
	CheckOut   string    `bson:"check_out,omitempty"`
	Guests     int       `bson:"guests,omitempty"`
	Message    string    `bson:"message,omitempty"`
	Company    string    `bson:"company,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newInquiryDocument(inq *domaininquiries.Inquiry) inquiryDocument {
	return inquiryDocument{
		ID:         string(inq.ID),
		Kind:       string(inq.Kind),
		Name:       inq.Name,
		Email:      inq.Email,
		Phone:      inq.Phone,
		PropertyID: string(inq.PropertyID),
		CheckIn:    inq.Stay.CheckIn.String(),
		CheckOut:   inq.Stay.CheckOut.String(),
		Guests:     inq.Guests,
		Message:    inq.Message,
		Company:    inq.Company,
		CreatedAt:  inq.CreatedAt.UTC(),
	}
}

func (d inquiryDocument) toAggregate() *domaininquiries.Inquiry {
	in, _ := daterange.ParseDate(d.CheckIn)
	out, _ := daterange.ParseDate(d.CheckOut)
	return &domaininquiries.Inquiry{
		ID:         domaininquiries.ID(d.ID),
		Kind:       domaininquiries.Kind(d.Kind),
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		PropertyID: domainproperties.PropertyID(d.PropertyID),
		Stay:       daterange.Stay{CheckIn: in, CheckOut: out},
		Guests:     d.Guests,
		Message:    d.Message,
		Company:    d.Company,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

var _ domaininquiries.Repository = (*InquiryRepository)(nil)
