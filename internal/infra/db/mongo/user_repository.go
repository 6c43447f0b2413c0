package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "stayhub/internal/domain/user"
)

const usersCollection = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find user %s: %w", id, err)
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	filter := bson.M{"_id": doc.ID, "version": u.Version}
	doc.Version = u.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrVersionConflict
		}
		return fmt.Errorf("mongo: save user %s: %w", u.ID, err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainuser.ErrVersionConflict
	}
	u.Version = doc.Version
	return nil
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Avatar    string    `bson:"avatar"`
	Contact   string    `bson:"contact"`
	TokenHash string    `bson:"token_hash"`
	WalletID  string    `bson:"wallet_id"`
	Income    int64     `bson:"income"`
	Bookings  []string  `bson:"bookings"`
	Listings  []string  `bson:"listings"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Version   int64     `bson:"version"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:        string(u.ID),
		Name:      u.Name,
		Avatar:    u.Avatar,
		Contact:   u.Contact,
		TokenHash: u.TokenHash,
		WalletID:  u.WalletID,
		Income:    u.Income,
		Bookings:  append([]string{}, u.Bookings...),
		Listings:  append([]string{}, u.Listings...),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
		Version:   u.Version,
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	return &domainuser.User{
		ID:        domainuser.ID(d.ID),
		Name:      d.Name,
		Avatar:    d.Avatar,
		Contact:   d.Contact,
		TokenHash: d.TokenHash,
		WalletID:  d.WalletID,
		Income:    d.Income,
		Bookings:  append([]string{}, d.Bookings...),
		Listings:  append([]string{}, d.Listings...),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Version:   d.Version,
	}
}
