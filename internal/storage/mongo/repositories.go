package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

type userRepository struct {
	collection *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return insert(ctx, r.collection, u.ID, u, u.CreatedAt)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type catalogRepository struct {
	collection *mongo.Collection
}

func (r *catalogRepository) GetByID(ctx context.Context, id string) (*model.CatalogComponent, error) {
	var c model.CatalogComponent
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.CatalogComponent, error) {
	result := make(map[string]model.CatalogComponent, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	items, err := findMany[model.CatalogComponent](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		result[c.ID] = c
	}
	return result, nil
}

func (r *catalogRepository) List(ctx context.Context, componentType string) ([]model.CatalogComponent, error) {
	filter := bson.M{}
	if componentType != "" {
		filter["type"] = componentType
	}
	opts := options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[model.CatalogComponent](ctx, r.collection, filter, opts)
}

func (r *catalogRepository) Upsert(ctx context.Context, c *model.CatalogComponent) error {
	return replace(ctx, r.collection, c.ID, c, time.Time{}, true)
}

type buildRepository struct {
	collection *mongo.Collection
}

func (r *buildRepository) Create(ctx context.Context, b *model.Build) error {
	return insert(ctx, r.collection, b.ID, b, b.CreatedAt)
}

func (r *buildRepository) GetByID(ctx context.Context, id string) (*model.Build, error) {
	var b model.Build
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *buildRepository) ListByUser(ctx context.Context, userID string) ([]model.Build, error) {
	return findMany[model.Build](ctx, r.collection, bson.M{"user_id": userID}, newestFirst())
}

func (r *buildRepository) ListPublished(ctx context.Context) ([]model.Build, error) {
	return findMany[model.Build](ctx, r.collection, bson.M{"published": true}, newestFirst())
}

func (r *buildRepository) Update(ctx context.Context, b *model.Build) error {
	return replace(ctx, r.collection, b.ID, b, b.CreatedAt, false)
}

func (r *buildRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, id)
}

type orderRepository struct {
	collection *mongo.Collection
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return insert(ctx, r.collection, o.ID, o, o.CreatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	opts := newestFirst()
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findMany[model.Order](ctx, r.collection, orderFilter(filter), opts)
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	return replace(ctx, r.collection, o.ID, o, o.CreatedAt, false)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, id)
}

func orderFilter(filter model.OrderFilter) bson.M {
	q := bson.M{}
	if filter.UserID != "" {
		q["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		q["build_status"] = string(filter.Status)
	}
	created := bson.M{}
	if !filter.From.IsZero() {
		created["$gte"] = filter.From.UTC()
	}
	if !filter.To.IsZero() {
		created["$lt"] = filter.To.UTC()
	}
	if len(created) > 0 {
		q["created_at"] = created
	}
	return q
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}
