package publisherrequests

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

// ErrDuplicatePending is returned by Insert when the email already has a pending request.
var ErrDuplicatePending = errors.New("pending request already exists")

// RequestRepository stores publisher requests. Missing documents are (nil, nil).
type RequestRepository interface {
	Insert(ctx context.Context, r *models.PublisherRequest) (models.InsertResult, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error)
	FindByEmail(ctx context.Context, email string) (*models.PublisherRequest, error)
	FindPendingByEmail(ctx context.Context, email string) (*models.PublisherRequest, error)
	List(ctx context.Context) ([]models.PublisherRequest, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)
	CountPending(ctx context.Context) (int64, error)
}

type MongoRequestRepository struct {
	col *mongo.Collection
}

func NewMongoRequestRepository(col *mongo.Collection) *MongoRequestRepository {
	return &MongoRequestRepository{col: col}
}

func (r *MongoRequestRepository) Insert(ctx context.Context, req *models.PublisherRequest) (models.InsertResult, error) {
	res, err := r.col.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.InsertResult{}, ErrDuplicatePending
		}
		return models.InsertResult{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return database.InsertResult(res), nil
}

func (r *MongoRequestRepository) findOne(ctx context.Context, filter bson.M) (*models.PublisherRequest, error) {
	var req models.PublisherRequest
	if err := r.col.FindOne(ctx, filter).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *MongoRequestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRequestRepository) FindByEmail(ctx context.Context, email string) (*models.PublisherRequest, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRequestRepository) FindPendingByEmail(ctx context.Context, email string) (*models.PublisherRequest, error) {
	return r.findOne(ctx, bson.M{"email": email, "status": models.StatusPending})
}

func (r *MongoRequestRepository) List(ctx context.Context) ([]models.PublisherRequest, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "requestedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.PublisherRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return database.DeleteResult(res), nil
}

func (r *MongoRequestRepository) CountPending(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": models.StatusPending})
}
