// Package docdb owns the MongoDB client lifecycle.
package docdb

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/retailsales/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("docdb",
	fx.Provide(New),
	fx.Provide(NewCollection),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// New connects a client for MONGO_URI and disconnects it when the app stops.
func New(p Params) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(p.Config.Mongo.URI).
		SetAppName(p.Config.AppName).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	log := p.Log.Named("docdb")
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}
			log.Info("mongo connected",
				zap.String("database", p.Config.Mongo.Database),
				zap.String("collection", p.Config.Mongo.Collection),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}

// NewCollection resolves the configured sales collection.
func NewCollection(client *mongo.Client, cfg config.Config) *mongo.Collection {
	return client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
}
