package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createReportsIndexes()
}

func createReportsIndexes() {
	reportsCollection := GetCollection("passenger_reports")
	reportsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainnumber", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "trainnumber", Value: 1},
				{Key: "serviceday", Value: 1},
			},
		},
		{
			// old reports describe trains nobody can board anymore
			Keys:    bson.D{{Key: "creationdatetime", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7 * 24 * 3600),
		},
	}

	opts := options.CreateIndexes()
	_, err := reportsCollection.Indexes().CreateMany(context.Background(), reportsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
