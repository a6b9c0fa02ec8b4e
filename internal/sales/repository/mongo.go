package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/retailsales/internal/sales/domain"
	"github.com/smallbiznis/retailsales/pkg/db/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type MongoParams struct {
	fx.In

	Collection *mongo.Collection
	Log        *zap.Logger
}

// MongoRepository serves queries from a document collection and loads it
// during ingestion.
type MongoRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewMongo(p MongoParams) *MongoRepository {
	return &MongoRepository{
		coll: p.Collection,
		log:  p.Log.Named("sales.repository.mongo"),
	}
}

func (r *MongoRepository) Backend() string { return "mongo" }

func (r *MongoRepository) Query(ctx context.Context, q domain.QuerySpec) (domain.Page, error) {
	filter := BuildFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return domain.Page{}, fmt.Errorf("count sales: %w", err)
	}

	items := []domain.Transaction{}
	opts, ok := findOptions(q, total)
	if !ok {
		return domain.Page{Items: items, Total: total}, nil
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return domain.Page{}, fmt.Errorf("find sales: %w", err)
	}
	if err := cursor.All(ctx, &items); err != nil {
		return domain.Page{}, fmt.Errorf("decode sales: %w", err)
	}
	for i := range items {
		items[i].Date = items[i].Date.UTC()
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}
	return domain.Page{Items: items, Total: total}, nil
}

// findOptions returns the sort, skip and limit for q, or false when the page
// starts at or past total.
func findOptions(q domain.QuerySpec, total int64) (*options.FindOptions, bool) {
	skip, ok := pagination.Pagination{Page: q.Page, Limit: q.Limit}.Skip(total)
	if !ok {
		return nil, false
	}
	return options.Find().
		SetSort(BuildSort(q)).
		SetSkip(skip).
		SetLimit(int64(q.Limit)).
		SetProjection(bson.D{{Key: "_id", Value: 0}}), true
}

func (r *MongoRepository) Reset(ctx context.Context) error {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("clear sales: %w", err)
	}
	r.log.Info("collection cleared", zap.Int64("deleted", res.DeletedCount))
	return nil
}

// InsertBatch inserts unordered so one bad document does not stop the rest.
func (r *MongoRepository) InsertBatch(ctx context.Context, batch []domain.Transaction) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(batch))
	for _, t := range batch {
		if t.Tags == nil {
			t.Tags = []string{}
		}
		docs = append(docs, t)
	}

	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			return len(docs) - len(bulkErr.WriteErrors), err
		}
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	names, err := r.coll.Indexes().CreateMany(ctx, mongoIndexes())
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	r.log.Info("indexes ensured", zap.Strings("indexes", names))
	return nil
}

func mongoIndexes() []mongo.IndexModel {
	single := func(key string, dir int) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: dir}}}
	}
	return []mongo.IndexModel{
		single("customerRegion", 1),
		single("gender", 1),
		single("productCategory", 1),
		single("paymentMethod", 1),
		single("tags", 1),
		single("date", -1),
		single("age", 1),
		{
			Keys: bson.D{
				{Key: "customerName", Value: "text"},
				{Key: "phoneNumber", Value: "text"},
			},
			Options: options.Index().SetName("customer_search_text"),
		},
	}
}

var (
	_ domain.Repository = (*MongoRepository)(nil)
	_ domain.Writer     = (*MongoRepository)(nil)
)
