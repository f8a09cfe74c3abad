package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore 基于MongoDB集合的日志记录存储
// 说明：每条日志一个文档，_id为日志ID，split字段为数据分区
type MongoStore struct {
	coll       *mongo.Collection
	partition  string
	tracksOnly bool
}

// NewMongoStore 创建基于MongoDB的日志存储
// 参数：coll-集合，partition-分区（为空则不过滤），tracksOnly-文档是否只包含locate_info
func NewMongoStore(coll *mongo.Collection, partition string, tracksOnly bool) *MongoStore {
	return &MongoStore{coll: coll, partition: partition, tracksOnly: tracksOnly}
}

func (s *MongoStore) filter() bson.M {
	if s.partition == "" {
		return bson.M{}
	}
	return bson.M{"split": s.partition}
}

// Load 按ID加载日志记录
func (s *MongoStore) Load(ctx context.Context, id string) (*entity.LogRecord, error) {
	filter := s.filter()
	filter["_id"] = id
	raw, err := s.coll.FindOne(ctx, filter).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, id, s.coll.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record %s: %w", id, err)
	}
	return DecodeRecord(id, raw, FormatBSON, s.tracksOnly)
}

// ListIDs 列出分区内的所有日志ID
func (s *MongoStore) ListIDs(ctx context.Context, order Order) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	if order == OrderSorted {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	cursor, err := s.coll.Find(ctx, s.filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode record ids: %w", err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
