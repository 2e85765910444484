package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	ProfileImage string    `bson:"profile_image,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

// profileDoc has no hash field; paired with profileProjection the hash never
// leaves the server.
type profileDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	ProfileImage string    `bson:"profile_image,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

var profileProjection = bson.D{{Key: "password_hash", Value: 0}}

type usersRepo struct {
	coll *mongo.Collection
}

func (r *usersRepo) find(ctx context.Context, filter bson.D) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return domain.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		ProfileImage: doc.ProfileImage,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.find(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.find(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *usersRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	var doc profileDoc
	err := r.coll.FindOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(profileProjection),
	).Decode(&doc)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return domain.Profile{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		ProfileImage: doc.ProfileImage,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.coll.InsertOne(ctx, userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt.UTC(),
	})
	return mapDuplicate(err)
}
