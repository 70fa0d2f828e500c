package cache

import (
	"context"
	"encoding/json"
)

// GetAs retrieves a value and decodes it as T. An entry that fails to
// decode is purged and reported as a miss; a cache must never be a source
// of crashes for its caller.
func GetAs[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var zero T

	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return zero, false, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		_ = s.Remove(ctx, key)
		return zero, false, nil
	}
	return value, true, nil
}

// SetAs encodes value as JSON and stores it under key
func SetAs[T any](ctx context.Context, s Store, key string, value T, opts Options) error {
	data, err := json.Marshal(value)
	if err != nil {
		return NewSerializationError("encoding value for key "+key, err)
	}
	return s.Set(ctx, key, data, opts)
}

// GetOrSetAs returns the decoded value for key, invoking factory at most
// once across concurrent callers when the key is missing.
func GetOrSetAs[T any](ctx context.Context, s Store, key string, factory func(ctx context.Context) (T, error), opts Options) (T, error) {
	var zero T

	raw, err := s.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, NewSerializationError("encoding value for key "+key, err)
		}
		return data, nil
	}, opts)
	if err != nil {
		return zero, err
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		// The stored bytes predate this type or are corrupt; drop them so
		// the next call recomputes.
		_ = s.Remove(ctx, key)
		return zero, NewSerializationError("decoding value for key "+key, err)
	}
	return value, nil
}
