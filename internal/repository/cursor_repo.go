package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planwise/internal/model"
)

// CursorRepo persists navigation cursors per (user, plan). The aggregator
// cache is volatile, but the learner's position survives a reload.
type CursorRepo interface {
	Get(ctx context.Context, userID, planID string) (*model.NavCursor, error)
	Upsert(ctx context.Context, cursor *model.NavCursor) error
}

type cursorRepo struct {
	collection *mongo.Collection
}

// NewCursorRepo creates a mongo-backed cursor repository.
func NewCursorRepo(db *mongo.Database) CursorRepo {
	return &cursorRepo{
		collection: db.Collection("navCursors"),
	}
}

func (r *cursorRepo) Get(ctx context.Context, userID, planID string) (*model.NavCursor, error) {
	filter := bson.M{"userId": userID, "planId": planID}

	var cursor model.NavCursor
	err := r.collection.FindOne(ctx, filter).Decode(&cursor)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}

func (r *cursorRepo) Upsert(ctx context.Context, cursor *model.NavCursor) error {
	cursor.UpdatedAt = time.Now()

	filter := bson.M{"userId": cursor.UserID, "planId": cursor.PlanID}
	update := bson.M{"$set": cursor}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
