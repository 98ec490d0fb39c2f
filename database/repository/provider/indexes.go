package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the schedule queries rely on.
func (r *MongoProviderRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldID, Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		// Versioned booking writes filter on id + version.
		{Keys: bson.D{{Key: fieldID, Value: 1}, {Key: fieldScheduleVersion, Value: 1}}, Options: options.Index().SetName("id_schedule_version_idx")},
		{Keys: bson.D{{Key: "schedule.acceptedTimeSlots.startTime", Value: 1}}, Options: options.Index().SetName("accepted_start_idx")},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}
