package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solvit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll  *mongo.Collection
	codec codec
}

// NewMongoProviderRepo creates a ProviderRepository backed by coll. Times read
// back from the store are converted to loc.
func NewMongoProviderRepo(coll *mongo.Collection, logger *zap.Logger, loc *time.Location) *MongoProviderRepo {
	return &MongoProviderRepo{coll: coll, codec: newCodec(logger, loc)}
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var raw bson.M
	if err := r.coll.FindOne(ctx, bson.M{fieldID: id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider with id %s: %w", id, ErrProviderNotFound)
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return r.codec.decodeProvider(raw)
}

func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, r.codec.encodeProvider(provider, provider.ScheduleVersion))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("provider with id %s: %w", provider.ID, ErrProviderExists)
		}
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) UpdateIfVersion(ctx context.Context, provider *models.Provider, expected int) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{fieldID: provider.ID, fieldScheduleVersion: expected}
	if expected == 0 {
		// Documents written before versioning have no version field.
		filter[fieldScheduleVersion] = bson.M{"$in": bson.A{0, nil}}
	}

	result, err := r.coll.ReplaceOne(ctx, filter, r.codec.encodeProvider(provider, expected+1))
	if err != nil {
		return fmt.Errorf("failed to update provider with id %s: %w", provider.ID, err)
	}
	if result.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{fieldID: provider.ID})
		if err != nil {
			return fmt.Errorf("failed to check provider with id %s: %w", provider.ID, err)
		}
		if count == 0 {
			return fmt.Errorf("provider with id %s: %w", provider.ID, ErrProviderNotFound)
		}
		return fmt.Errorf("provider with id %s at version %d: %w", provider.ID, expected, ErrVersionConflict)
	}
	provider.ScheduleVersion = expected + 1
	return nil
}

func (r *MongoProviderRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{fieldID: id})
	if err != nil {
		return fmt.Errorf("failed to delete provider with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("provider with id %s: %w", id, ErrProviderNotFound)
	}
	return nil
}

func (r *MongoProviderRepo) ListIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{fieldID: 1, "_id": 0})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode provider id: %w", err)
		}
		if doc.ID != "" {
			ids = append(ids, doc.ID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

func (r *MongoProviderRepo) Ping(ctx context.Context) error {
	ctx, cancel := newContext(ctx, 2*time.Second)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, nil)
}
