package decorator

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"

	"github.com/nexolabs/nexo-cache/cache"
)

// compressionMagic prefixes every compressed payload so the stored format
// is self-describing. Entries written before compression was enabled lack
// the prefix and are returned as-is.
var compressionMagic = []byte{'N', 'X', 'C', '1'}

// DefaultCompressionThreshold is the minimum payload size worth
// compressing; below it the gzip overhead exceeds the benefit.
const DefaultCompressionThreshold = 1024

// Compressed transparently gzips values at or above a size threshold on
// write and inflates them on read.
type Compressed struct {
	inner     cache.Store
	threshold int
	level     int
	logger    *slog.Logger
}

// CompressedOption configures the compression decorator
type CompressedOption func(*Compressed)

// WithThreshold sets the minimum payload size, in bytes, that gets compressed
func WithThreshold(n int) CompressedOption {
	return func(d *Compressed) {
		if n > 0 {
			d.threshold = n
		}
	}
}

// WithLevel sets the gzip compression level
func WithLevel(level int) CompressedOption {
	return func(d *Compressed) {
		d.level = level
	}
}

// NewCompressed wraps inner with transparent compression
func NewCompressed(inner cache.Store, opts ...CompressedOption) *Compressed {
	d := &Compressed{
		inner:     inner,
		threshold: DefaultCompressionThreshold,
		level:     gzip.DefaultCompression,
		logger:    slog.Default().With("component", "compressed-cache"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get retrieves a value, inflating it when the compression prefix is
// present. A payload that fails to inflate is purged and treated as a
// miss rather than propagated.
func (d *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, err := d.inner.Get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}

	value, decErr := d.decode(data)
	if decErr != nil {
		d.logger.Warn("dropping undecodable cache entry", "key", key, "error", decErr)
		_ = d.inner.Remove(ctx, key)
		return nil, false, nil
	}
	return value, true, nil
}

// Set compresses the value when it is at or above the threshold, then
// stores it in the inner store.
func (d *Compressed) Set(ctx context.Context, key string, value []byte, opts cache.Options) error {
	encoded, err := d.encode(value)
	if err != nil {
		return cache.NewSerializationError("compressing value for key "+key, err)
	}
	return d.inner.Set(ctx, key, encoded, opts)
}

// Remove deletes a value from the inner store
func (d *Compressed) Remove(ctx context.Context, key string) error {
	return d.inner.Remove(ctx, key)
}

// Refresh touches an entry in the inner store
func (d *Compressed) Refresh(ctx context.Context, key string) error {
	return d.inner.Refresh(ctx, key)
}

// Exists reports whether a live entry is present in the inner store
func (d *Compressed) Exists(ctx context.Context, key string) (bool, error) {
	return d.inner.Exists(ctx, key)
}

// GetOrSet computes the value on a miss, storing it compressed and
// returning it inflated.
func (d *Compressed) GetOrSet(ctx context.Context, key string, factory cache.Factory, opts cache.Options) ([]byte, error) {
	raw, err := d.inner.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return d.encode(value)
	}, opts)
	if err != nil {
		return nil, err
	}

	value, decErr := d.decode(raw)
	if decErr != nil {
		_ = d.inner.Remove(ctx, key)
		return nil, cache.NewSerializationError("decompressing value for key "+key, decErr)
	}
	return value, nil
}

// Clear empties the inner store
func (d *Compressed) Clear(ctx context.Context) error {
	return d.inner.Clear(ctx)
}

// Stats returns the inner store's statistics
func (d *Compressed) Stats() cache.Statistics {
	return d.inner.Stats()
}

// encode gzips value when it is at or above the threshold. A raw value
// that happens to start with the magic prefix is compressed regardless of
// size, keeping the stored format unambiguous.
func (d *Compressed) encode(value []byte) ([]byte, error) {
	if len(value) < d.threshold && !bytes.HasPrefix(value, compressionMagic) {
		return value, nil
	}

	var buf bytes.Buffer
	buf.Write(compressionMagic)

	zw, err := gzip.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(value); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode inflates a payload carrying the magic prefix and passes every
// other payload through untouched.
func (d *Compressed) decode(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, compressionMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data[len(compressionMagic):]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
