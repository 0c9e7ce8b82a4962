package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultDatabase = "watchlist"

// Connect opens a MongoDB client and returns it with the database named in
// the URI path (or "watchlist" when the URI names none).
func Connect(ctx context.Context, mongoURI string, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	cs, err := connstring.Parse(mongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("parse mongo uri: %w", err)
	}

	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info("connecting to MongoDB", "hosts", cs.Hosts)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	dbName := cs.Database
	if dbName == "" {
		dbName = defaultDatabase
	}

	log.Info("connected to MongoDB", "database", dbName)
	return client, client.Database(dbName), nil
}

func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
