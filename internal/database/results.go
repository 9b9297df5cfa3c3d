package database

import (
	"github.com/newsdesk/newsdesk-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return ""
}

func InsertResult(r *mongo.InsertOneResult) models.InsertResult {
	if r == nil {
		return models.InsertResult{}
	}
	return models.InsertResult{Acknowledged: true, InsertedID: idString(r.InsertedID)}
}

func UpdateResult(r *mongo.UpdateResult) models.UpdateResult {
	if r == nil {
		return models.UpdateResult{}
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    idString(r.UpsertedID),
	}
}

func DeleteResult(r *mongo.DeleteResult) models.DeleteResult {
	if r == nil {
		return models.DeleteResult{}
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: r.DeletedCount}
}
