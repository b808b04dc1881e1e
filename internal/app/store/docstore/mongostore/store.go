// internal/app/store/docstore/mongostore/store.go

// Package mongostore implements docstore.Store on MongoDB.
//
// Server-generated timestamps use $currentDate so document ordering never
// depends on client clocks. Watch is built on change streams and therefore
// requires a replica set (a single-node replica set is fine for dev).
package mongostore

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store implements docstore.Store on a Mongo database.
type Store struct {
	db  *mongo.Database
	log *zap.Logger
}

// New constructs a Store bound to the given database and logger.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := s.Create(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Create(ctx context.Context, collection, id string, data map[string]any) error {
	set, current := splitServerTimestamps(data)
	doc := bson.M{"_id": id}
	for k, v := range set {
		doc[k] = v
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return docstore.ErrExists
		}
		return err
	}

	// Server timestamps can't ride on InsertOne; stamp them in a follow-up
	// update. If this second write is lost the field is simply absent and
	// readers degrade to "now", acceptable for display timestamps.
	if len(current) > 0 {
		if _, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$currentDate": current}); err != nil {
			s.log.Warn("server timestamp stamp failed",
				zap.String("collection", collection),
				zap.String("id", id),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set, current := splitServerTimestamps(fields)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(current) > 0 {
		update["$currentDate"] = current
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.db.Collection(collection).UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// splitServerTimestamps separates sentinel-valued fields (stamped with
// $currentDate server-side) from plain field values.
func splitServerTimestamps(fields map[string]any) (set map[string]any, current bson.M) {
	set = make(map[string]any, len(fields))
	current = bson.M{}
	for k, v := range fields {
		if docstore.IsServerTimestamp(v) {
			current[k] = true
			continue
		}
		set[k] = v
	}
	return set, current
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	return toDocument(raw), nil
}

func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, toDocument(raw))
	}
	return docs, nil
}

func toDocument(raw bson.M) docstore.Document {
	doc := docstore.Document{Data: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case string:
				doc.ID = id
			case primitive.ObjectID:
				doc.ID = id.Hex()
			}
			continue
		}
		doc.Data[k] = v
	}
	return doc
}

/*─────────────────────────────────────────────────────────────────────────────*
| Watch                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Watch opens a change stream on the collection and re-runs the filtered
// query after every event, delivering a fresh materialized snapshot each
// time. Re-querying is deliberately simple: the change stream tells us
// *that* the collection changed, the query defines *what* the subscriber
// sees, and per-watch ordering falls out of the single reader goroutine.
func (s *Store) Watch(ctx context.Context, collection string, filter docstore.Filter, fn docstore.SnapshotFunc) (docstore.CancelFunc, error) {
	cs, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	wctx, stop := context.WithCancel(context.Background())
	var once sync.Once
	cancel := func() {
		once.Do(stop)
	}

	go func() {
		defer cs.Close(context.Background())

		deliver := func() bool {
			docs, err := s.Find(wctx, collection, filter)
			if err != nil {
				if wctx.Err() == nil {
					s.log.Warn("watch re-query failed",
						zap.String("collection", collection),
						zap.Error(err))
				}
				return false
			}
			if wctx.Err() != nil {
				return false
			}
			fn(docs)
			return true
		}

		// Initial snapshot, then one per change event.
		if !deliver() {
			return
		}
		for cs.Next(wctx) {
			if !deliver() {
				return
			}
		}
		if err := cs.Err(); err != nil && wctx.Err() == nil {
			s.log.Warn("change stream ended",
				zap.String("collection", collection),
				zap.Error(err))
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-wctx.Done():
		}
	}()

	return cancel, nil
}
