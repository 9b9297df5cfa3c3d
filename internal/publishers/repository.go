package publishers

import (
	"context"
	"errors"

	"github.com/newsdesk/newsdesk-server/internal/database"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned by Insert when the email already has a publisher.
var ErrDuplicateEmail = errors.New("publisher email already exists")

type PublisherRepository interface {
	Insert(ctx context.Context, p *models.Publisher) (models.InsertResult, error)
	GetByEmail(ctx context.Context, email string) (*models.Publisher, error)
	List(ctx context.Context) ([]models.Publisher, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)
	Count(ctx context.Context) (int64, error)
}

type MongoPublisherRepository struct {
	col *mongo.Collection
}

func NewMongoPublisherRepository(col *mongo.Collection) *MongoPublisherRepository {
	return &MongoPublisherRepository{col: col}
}

func (r *MongoPublisherRepository) Insert(ctx context.Context, p *models.Publisher) (models.InsertResult, error) {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.InsertResult{}, ErrDuplicateEmail
		}
		return models.InsertResult{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return database.InsertResult(res), nil
}

func (r *MongoPublisherRepository) GetByEmail(ctx context.Context, email string) (*models.Publisher, error) {
	var p models.Publisher
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoPublisherRepository) List(ctx context.Context) ([]models.Publisher, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Publisher{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoPublisherRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return database.DeleteResult(res), nil
}

func (r *MongoPublisherRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
