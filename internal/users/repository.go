package users

import (
	"context"
	"errors"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/database"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for users. Lookups are by email;
// a missing user is (nil, nil).
type UserRepository interface {
	Upsert(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	AddRole(ctx context.Context, email, role string) (models.UpdateResult, error)
	SetPremium(ctx context.Context, email string, until time.Time) (models.UpdateResult, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Upsert(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return models.UpdateResult{}, err
	}
	return database.UpdateResult(res), nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRole does not create the user when missing.
func (r *MongoUserRepository) AddRole(ctx context.Context, email, role string) (models.UpdateResult, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$addToSet": bson.M{"roles": role}})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return database.UpdateResult(res), nil
}

func (r *MongoUserRepository) SetPremium(ctx context.Context, email string, until time.Time) (models.UpdateResult, error) {
	update := bson.M{"$set": bson.M{"premiumTaken": until, "updatedAt": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return database.UpdateResult(res), nil
}
