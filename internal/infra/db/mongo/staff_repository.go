package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "coastalstay/internal/domain/user"
)

type StaffRepository struct {
	col *mongo.Collection
}

func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{col: db.Collection(staffCollection)}
}

func (r *StaffRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.Staff, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *StaffRepository) ByEmail(ctx context.Context, email string) (*domainuser.Staff, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *StaffRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.Staff, error) {
	var doc staffDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find staff: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *StaffRepository) Save(ctx context.Context, staff *domainuser.Staff) error {
	if staff == nil || strings.TrimSpace(string(staff.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	doc := staffDocument{
		ID:           string(staff.ID),
		Email:        strings.ToLower(strings.TrimSpace(staff.Email)),
		Name:         staff.Name,
		PasswordHash: staff.PasswordHash,
		Role:         string(staff.Role),
		Disabled:     staff.Disabled,
		CreatedAt:    staff.CreatedAt.UTC(),
		UpdatedAt:    staff.UpdatedAt.UTC(),
	}
	if doc.Email == "" {
		return domainuser.ErrEmailInvalid
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrEmailAlreadyUsed
		}
		return fmt.Errorf("mongo: save staff: %w", err)
	}
	return nil
}

type staffDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Disabled     bool      `bson:"disabled"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d staffDocument) toAggregate() *domainuser.Staff {
	return &domainuser.Staff{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         domainuser.Role(d.Role),
		Disabled:     d.Disabled,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

var _ domainuser.Repository = (*StaffRepository)(nil)
