// Package mongo stores aggregates as snake_case MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/repository"
)

const (
	usersCollection      = "users"
	componentsCollection = "components"
	buildsCollection     = "builds"
	ordersCollection     = "orders"
)

// Storage is the MongoDB backed repository factory.
type Storage struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

var _ repository.Factory = (*Storage)(nil)

// New connects to uri, verifies the connection and ensures indexes.
func New(ctx context.Context, uri, database string, logger *slog.Logger) (*Storage, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Storage{client: client, db: client.Database(database), logger: logger}
	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Storage) createIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		componentsCollection: {
			{Keys: bson.D{{Key: "type", Value: 1}}},
		},
		buildsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "published", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "build_status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Storage) Close() {
	if s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Warn("mongo disconnect failed", slog.String("error", err.Error()))
	}
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Users() repository.UserRepository {
	return &userRepository{collection: s.db.Collection(usersCollection)}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{collection: s.db.Collection(componentsCollection)}
}

func (s *Storage) Builds() repository.BuildRepository {
	return &buildRepository{collection: s.db.Collection(buildsCollection)}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{collection: s.db.Collection(ordersCollection)}
}

// --- shared collection helpers ---

func insert(ctx context.Context, coll *mongo.Collection, id string, v any, createdAt time.Time) error {
	doc, err := toDocument(id, v, createdAt)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, id string, v any, createdAt time.Time, upsert bool) error {
	doc, err := toDocument(id, v, createdAt)
	if err != nil {
		return err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(upsert))
	if err != nil {
		return fmt.Errorf("failed to replace in %s: %w", coll.Name(), err)
	}
	if !upsert && res.MatchedCount == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, dst any) error {
	var raw bson.M
	if err := coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainErrors.ErrNotFound
		}
		return fmt.Errorf("failed to find in %s: %w", coll.Name(), err)
	}
	return fromDocument(raw, dst)
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	result := make([]T, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		var item T
		if err := fromDocument(raw, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
