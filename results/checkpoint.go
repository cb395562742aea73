package results

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/corrsketch/blobstore"
	"github.com/hupe1980/corrsketch/codec"
	"github.com/hupe1980/corrsketch/internal/compress"
	"github.com/hupe1980/corrsketch/internal/hash"
)

const (
	// Magic identifies checkpoint blobs (ASCII: "CSKR").
	Magic = "CSKR"
	// Version is the current checkpoint format version.
	Version uint16 = 1
)

var (
	ErrInvalidMagic     = errors.New("results: invalid checkpoint magic")
	ErrInvalidVersion   = errors.New("results: unsupported checkpoint version")
	ErrChecksumMismatch = errors.New("results: checkpoint checksum mismatch")
	ErrTruncated        = errors.New("results: truncated checkpoint")
)

// Checkpoint layout, little endian:
//
//	magic [4] | version u16 | compression u8 | codec name length u8 | codec name |
//	payload length u32 | CRC32C(payload) u32 | payload
const fixedHeaderSize = 4 + 2 + 1 + 1 + 4 + 4

// Frame encodes r with c, compresses it and prepends the checkpoint header.
func Frame(r Results, c codec.Codec, ct compress.Type) ([]byte, error) {
	if len(c.Name()) > 255 {
		return nil, fmt.Errorf("results: codec name %q too long", c.Name())
	}
	body, err := Encode(c, r)
	if err != nil {
		return nil, err
	}
	payload, err := compress.Compress(body, ct)
	if err != nil {
		return nil, err
	}

	name := c.Name()
	out := make([]byte, 0, fixedHeaderSize+len(name)+len(payload))
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint16(out, Version)
	out = append(out, byte(ct), byte(len(name)))
	out = append(out, name...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.LittleEndian.AppendUint32(out, hash.CRC32C(payload))
	return append(out, payload...), nil
}

// Unframe verifies a checkpoint and decodes it with the codec named in its header.
func Unframe(data []byte) (Results, error) {
	if len(data) < fixedHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if string(data[:4]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	ct := compress.Type(data[6])
	nameLen := int(data[7])
	rest := data[8:]
	if len(rest) < nameLen+8 {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	c, err := codec.Lookup(string(rest[:nameLen]))
	if err != nil {
		return nil, err
	}
	rest = rest[nameLen:]
	size := binary.LittleEndian.Uint32(rest)
	sum := binary.LittleEndian.Uint32(rest[4:])
	payload := rest[8:]
	if uint32(len(payload)) != size {
		return nil, fmt.Errorf("%w: payload %d bytes, header says %d", ErrTruncated, len(payload), size)
	}
	if got := hash.CRC32C(payload); got != sum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, got, sum)
	}

	body, err := compress.Decompress(payload, ct)
	if err != nil {
		return nil, err
	}
	return Decode(c, body)
}

// Checkpointer persists a result set under one blob name. Every Save is a
// full overwrite.
type Checkpointer struct {
	store       blobstore.Store
	name        string
	codec       codec.Codec
	compression compress.Type
}

// CheckpointOption configures a Checkpointer.
type CheckpointOption func(*Checkpointer)

// WithCodec sets the codec for new checkpoints. nil selects codec.Default.
func WithCodec(c codec.Codec) CheckpointOption {
	return func(cp *Checkpointer) {
		if c == nil {
			c = codec.Default
		}
		cp.codec = c
	}
}

// WithCompression sets the compression for new checkpoints.
func WithCompression(ct compress.Type) CheckpointOption {
	return func(cp *Checkpointer) {
		cp.compression = ct
	}
}

// NewCheckpointer returns a checkpointer writing name in store.
func NewCheckpointer(store blobstore.Store, name string, optFns ...CheckpointOption) *Checkpointer {
	cp := &Checkpointer{
		store:       store,
		name:        name,
		codec:       codec.Default,
		compression: compress.None,
	}
	for _, fn := range optFns {
		fn(cp)
	}
	return cp
}

// Name returns the blob name.
func (cp *Checkpointer) Name() string {
	return cp.name
}

// Save writes r, replacing any previous checkpoint.
func (cp *Checkpointer) Save(ctx context.Context, r Results) error {
	data, err := Frame(r, cp.codec, cp.compression)
	if err != nil {
		return err
	}
	if err := cp.store.Put(ctx, cp.name, data); err != nil {
		return fmt.Errorf("results: save %s: %w", cp.name, err)
	}
	return nil
}

// Load reads the checkpoint. A missing blob yields an error satisfying
// errors.Is(err, blobstore.ErrNotFound).
func (cp *Checkpointer) Load(ctx context.Context) (Results, error) {
	data, err := blobstore.ReadAll(ctx, cp.store, cp.name)
	if err != nil {
		return nil, fmt.Errorf("results: load %s: %w", cp.name, err)
	}
	r, err := Unframe(data)
	if err != nil {
		return nil, fmt.Errorf("results: load %s: %w", cp.name, err)
	}
	return r, nil
}
