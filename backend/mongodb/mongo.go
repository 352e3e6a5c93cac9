// Package mongodb implements the managed wide-column Handler on MongoDB.
// Index values are written into the stored item itself (an "indexes"
// subdocument of normalized values), so exact lookups are native queries.
// Wildcard matching retrieves the candidate set and applies the pattern
// client-side as a Go regular expression; callers must use regexp syntax
// with this backend, not the glob marker the key-value family understands.
package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grimmjow8/kev/backend"
)

// Handler binds one schema to a Mongo collection.
type Handler struct {
	col *mongo.Collection
}

type item struct {
	ID      string            `bson:"_id"`
	Fields  map[string]any    `bson:"fields"`
	Indexes map[string]string `bson:"indexes,omitempty"`
}

// New wraps the collection and ensures a native secondary index exists for
// each indexed field, so exact lookups do not scan. A missing secondary
// index silently degrades every lookup, so creation failure is an error.
func New(col *mongo.Collection, indexedFields []string) (*Handler, error) {
	if len(indexedFields) > 0 {
		models := make([]mongo.IndexModel, 0, len(indexedFields))
		for _, f := range indexedFields {
			models = append(models, mongo.IndexModel{
				Keys: bson.D{{Key: "indexes." + f, Value: 1}},
			})
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
			return nil, fmt.Errorf("create secondary indexes: %w", err)
		}
	}
	return &Handler{col: col}, nil
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	// $set only the raw fields; the indexes subdocument is owned by the
	// index add/remove operations and must survive a re-save.
	opts := options.Update().SetUpsert(true)
	_, err := h.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"fields": fields}}, opts)
	return err
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	var it item
	if err := h.col.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	return it.Fields, nil
}

func (h *Handler) Delete(ctx context.Context, id string) error {
	res, err := h.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := h.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ids []string
	for cur.Next(ctx) {
		var it item
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		ids = append(ids, it.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	_, err := h.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"indexes." + field: value}})
	return err
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	// the value guard keeps a stale removal from clobbering a newer entry
	_, err := h.col.UpdateOne(ctx,
		bson.M{"_id": id, "indexes." + field: value},
		bson.M{"$unset": bson.M{"indexes." + field: ""}})
	return err
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := h.col.Find(ctx, bson.M{"indexes." + field: value}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ids []string
	for cur.Next(ctx) {
		var it item
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		ids = append(ids, it.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "indexes." + field: 1})
	cur, err := h.col.Find(ctx, bson.M{"indexes." + field: bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ids []string
	for cur.Next(ctx) {
		var it item
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		if re.MatchString(it.Indexes[field]) {
			ids = append(ids, it.ID)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IsWildcard(value string) bool {
	return value != regexp.QuoteMeta(value)
}

func (h *Handler) SupportsWildcard() bool { return true }

func (h *Handler) FlushDB(ctx context.Context) error {
	_, err := h.col.DeleteMany(ctx, bson.M{})
	return err
}

// CompilePattern builds the case-insensitive full-match matcher used for
// client-side wildcard evaluation.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)^(?:" + pattern + ")$")
}
