package vectorstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoDoc is the BSON shape of the handle.
type mongoDoc struct {
	ID            string   `bson:"_id"`
	VectorStoreID string   `bson:"vector_store_id"`
	FileIDs       []string `bson:"file_ids,omitempty"`
	Revision      uint64   `bson:"revision"`
}

// MongoRepository keeps the handle in a MongoDB collection. Saves go
// through FindOneAndUpdate filtered on the revision, which MongoDB
// applies atomically per document.
type MongoRepository struct {
	coll *mongo.Collection
	key  string
}

// NewMongoRepository persists the handle in coll.
func NewMongoRepository(coll *mongo.Collection, key string) *MongoRepository {
	if key == "" {
		key = "default"
	}
	return &MongoRepository{coll: coll, key: key}
}

// Load reads the handle and its revision.
func (r *MongoRepository) Load(ctx context.Context) (Handle, uint64, error) {
	var doc mongoDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": r.key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Handle{}, 0, ErrNoHandle
		}
		return Handle{}, 0, err
	}
	return Handle{VectorStoreID: doc.VectorStoreID, FileIDs: doc.FileIDs}, doc.Revision, nil
}

// Save writes the handle if the stored revision still matches.
func (r *MongoRepository) Save(ctx context.Context, h Handle, expectedRevision uint64) error {
	filter := bson.M{"_id": r.key, "revision": expectedRevision}
	update := bson.M{"$set": bson.M{
		"vector_store_id": h.VectorStoreID,
		"file_ids":        h.FileIDs,
		"revision":        expectedRevision + 1,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if expectedRevision == 0 {
		// First save may create the document. The filter's revision 0
		// never matches an existing document (revisions start at 1), so
		// an upsert either inserts or collides with a concurrent insert.
		opts.SetUpsert(true)
	}

	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRevisionConflict
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrRevisionConflict
	}
	return err
}
