package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
)

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func storedOrder() bson.D {
	return bson.D{
		{Key: "_id", Value: "o1"},
		{Key: "user_id", Value: "u1"},
		{Key: "user_email", Value: "a@b.c"},
		{Key: "build_status", Value: "Pending"},
		{Key: "delivery_method", Value: "Pick up at store"},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(created)},
		{Key: "total_charge", Value: "3700.5"},
		{Key: "components", Value: bson.A{
			bson.D{{Key: "component_id", Value: "c1"}, {Key: "quantity", Value: int32(2)}, {Key: "price", Value: "10"}},
		}},
		{Key: "step_timestamps", Value: bson.D{{Key: "Pending", Value: primitive.NewDateTimeFromTime(created)}}},
	}
}

func TestToDocumentKeysByID(t *testing.T) {
	order := model.Order{
		ID:          "o1",
		UserEmail:   "a@b.c",
		BuildStatus: model.StatusPending,
		CreatedAt:   created,
	}

	doc, err := toDocument(order.ID, order, order.CreatedAt)
	require.NoError(t, err)

	assert.Equal(t, "o1", doc["_id"])
	assert.NotContains(t, doc, "id")
	assert.Equal(t, "a@b.c", doc["user_email"])
	assert.Equal(t, created, doc["created_at"], "created_at must be a native date")
}

func TestFromDocumentHandlesDriverTypes(t *testing.T) {
	var raw bson.M
	data, err := bson.Marshal(storedOrder())
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(data, &raw))

	var order model.Order
	require.NoError(t, fromDocument(raw, &order))

	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, model.StatusPending, order.BuildStatus)
	assert.True(t, order.CreatedAt.Equal(created))
	assert.True(t, order.TotalCharge.Equal(decimal.RequireFromString("3700.5")))
	require.Len(t, order.Components, 1)
	assert.Equal(t, 2, order.Components[0].Quantity)
	assert.True(t, order.StepTimestamps[model.StatusPending].Equal(created))
}

func TestNormalizeConvertsPrimitives(t *testing.T) {
	oid := primitive.NewObjectID()
	dec, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)

	out := normalize(bson.M{"oid": oid, "dec": dec, "list": bson.A{int32(1)}}).(map[string]any)

	assert.Equal(t, oid.Hex(), out["oid"])
	assert.Equal(t, "12.50", out["dec"])
	assert.Equal(t, []any{int32(1)}, out["list"])
}

func TestOrderFilter(t *testing.T) {
	to := created.Add(24 * time.Hour)
	q := orderFilter(model.OrderFilter{UserID: "u1", Status: model.StatusShipped, From: created, To: to})

	assert.Equal(t, "u1", q["user_id"])
	assert.Equal(t, "Shipped", q["build_status"])
	assert.Equal(t, bson.M{"$gte": created, "$lt": to}, q["created_at"])

	assert.Empty(t, orderFilter(model.OrderFilter{}))
}

func TestRepositoriesAgainstMockServer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get order", func(mt *mtest.T) {
		repo := &orderRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "rigshop.orders", mtest.FirstBatch, storedOrder()))

		order, err := repo.GetByID(ctx, "o1")
		require.NoError(mt, err)
		assert.Equal(mt, "a@b.c", order.UserEmail)
	})

	mt.Run("missing order", func(mt *mtest.T) {
		repo := &orderRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "rigshop.orders", mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(mt, err, domainErrors.ErrNotFound)
	})

	mt.Run("list orders", func(mt *mtest.T) {
		repo := &orderRepository{collection: mt.Coll}
		second := storedOrder()
		second[0].Value = "o2"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "rigshop.orders", mtest.FirstBatch, storedOrder()),
			mtest.CreateCursorResponse(0, "rigshop.orders", mtest.NextBatch, second),
		)

		orders, err := repo.List(ctx, model.OrderFilter{UserID: "u1", Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		assert.Equal(mt, "o2", orders[1].ID)
	})

	mt.Run("duplicate user", func(mt *mtest.T) {
		repo := &userRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(ctx, &model.User{ID: "u1", Email: "a@b.c", CreatedAt: created})
		assert.ErrorIs(mt, err, domainErrors.ErrAlreadyExists)
	})

	mt.Run("update missing build", func(mt *mtest.T) {
		repo := &buildRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Update(ctx, &model.Build{ID: "b1", CreatedAt: created})
		assert.ErrorIs(mt, err, domainErrors.ErrNotFound)
	})

	mt.Run("delete build", func(mt *mtest.T) {
		repo := &buildRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.Delete(ctx, "b1"))
	})

	mt.Run("catalog lookup by ids", func(mt *mtest.T) {
		repo := &catalogRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "rigshop.components", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c1"}, {Key: "name", Value: "Ryzen"}, {Key: "type", Value: "CPU"}, {Key: "price", Value: "199.99"}},
		))

		found, err := repo.GetByIDs(ctx, []string{"c1", "c2"})
		require.NoError(mt, err)
		require.Contains(mt, found, "c1")
		assert.NotContains(mt, found, "c2")
		assert.Equal(mt, "Ryzen", found["c1"].Name)
	})
}
