package articles

import (
	"context"
	"errors"
	"regexp"

	"github.com/newsdesk/newsdesk-server/internal/database"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter selects articles. Empty fields do not constrain; Limit 0 is unlimited.
// SortField is always descending.
type Filter struct {
	Status      string
	AuthorEmail string
	Publisher   string
	Tag         string
	Search      string
	PremiumOnly bool
	SortField   string
	Limit       int64
}

// ArticleRepository defines persistence operations for articles. Missing documents are (nil, nil).
type ArticleRepository interface {
	Insert(ctx context.Context, a *models.Article) (models.InsertResult, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Article, error)
	Find(ctx context.Context, f Filter) ([]models.Article, error)
	HasAuthor(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (models.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountApprovedByPublisher(ctx context.Context, publisher string) (int64, error)
}

type MongoArticleRepository struct {
	col *mongo.Collection
}

func NewMongoArticleRepository(col *mongo.Collection) *MongoArticleRepository {
	return &MongoArticleRepository{col: col}
}

func (r *MongoArticleRepository) Insert(ctx context.Context, a *models.Article) (models.InsertResult, error) {
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return models.InsertResult{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return database.InsertResult(res), nil
}

func (r *MongoArticleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// IncrementViews bumps viewCount and returns the document as it is after the increment.
func (r *MongoArticleRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Article
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func mongoFilter(f Filter) bson.M {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.AuthorEmail != "" {
		m["authorEmail"] = f.AuthorEmail
	}
	if f.Publisher != "" {
		m["publisher"] = f.Publisher
	}
	if f.Tag != "" {
		m["tags"] = f.Tag
	}
	if f.Search != "" {
		m["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if f.PremiumOnly {
		m["isPremium"] = true
	}
	return m
}

func (r *MongoArticleRepository) Find(ctx context.Context, f Filter) ([]models.Article, error) {
	opts := options.Find()
	if f.SortField != "" {
		opts.SetSort(bson.D{{Key: f.SortField, Value: -1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, err
	}
	out := []models.Article{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoArticleRepository) HasAuthor(ctx context.Context, email string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"authorEmail": email}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoArticleRepository) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (models.UpdateResult, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return database.UpdateResult(res), nil
}

func (r *MongoArticleRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return database.DeleteResult(res), nil
}

func (r *MongoArticleRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": status})
}

func (r *MongoArticleRepository) CountApprovedByPublisher(ctx context.Context, publisher string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"publisher": publisher, "status": models.StatusApproved})
}
