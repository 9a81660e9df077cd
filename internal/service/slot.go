package service

import (
	"context"
	"encoding/json"
	"errors"

	"starcg-market-api/internal/repository"
)

// loadSlot decodes the JSON value under key into v. It reports false when
// nothing has been stored yet.
func loadSlot(ctx context.Context, store repository.KVStore, key string, v any) (bool, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &repository.StorageError{Op: "decode", Backend: "slot", Key: key, Err: err}
	}
	return true, nil
}

func saveSlot(ctx context.Context, store repository.KVStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &repository.StorageError{Op: "encode", Backend: "slot", Key: key, Err: err}
	}
	return store.Set(ctx, key, data)
}
