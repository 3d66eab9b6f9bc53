package vectorstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps the handle in a single Redis key. Saves run
// inside a WATCH transaction so two nodes racing to create the store
// cannot both win.
type RedisRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRepository persists the handle under key.
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	if key == "" {
		key = "voxagent:vectorstore:handle"
	}
	return &RedisRepository{client: client, key: key}
}

// Load reads the handle and its revision.
func (r *RedisRepository) Load(ctx context.Context) (Handle, uint64, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Handle{}, 0, ErrNoHandle
		}
		return Handle{}, 0, err
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Handle{}, 0, err
	}
	return rec.Handle, rec.Revision, nil
}

// Save writes the handle if the stored revision still matches.
func (r *RedisRepository) Save(ctx context.Context, h Handle, expectedRevision uint64) error {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, r.key).Bytes()
		switch {
		case err == nil:
			var rec fileRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			if rec.Revision != expectedRevision {
				return ErrRevisionConflict
			}
		case errors.Is(err, redis.Nil):
			if expectedRevision != 0 {
				return ErrRevisionConflict
			}
		default:
			return err
		}

		next, err := json.Marshal(fileRecord{Handle: h, Revision: expectedRevision + 1})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, next, 0)
			return nil
		})
		return err
	}, r.key)

	if errors.Is(err, redis.TxFailedErr) {
		// The key changed between WATCH and EXEC.
		return ErrRevisionConflict
	}
	return err
}
