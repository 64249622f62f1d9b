package cart

import (
	"bytes"
	"fmt"

	"storefront/internal/types"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic prefixes every zstd frame; Decode uses it to tell compressed
// blobs from plain JSON, so turning compression on or off keeps old carts readable.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
var dec, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))

// Codec serializes the whole line item list.
type Codec struct {
	Compress bool
}

// Encode renders items as a JSON array, zstd-compressed if c.Compress is set.
func (c Codec) Encode(items []types.LineItem) ([]byte, error) {
	if items == nil {
		items = []types.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	if !c.Compress {
		return b, nil
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b))), nil
}

// Decode accepts both compressed and plain blobs. An empty blob is an empty cart.
func (c Codec) Decode(b []byte) ([]types.LineItem, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []types.LineItem{}, nil
	}
	if bytes.HasPrefix(b, zstdMagic) {
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, types.Err(types.ErrCorruptCart, err, "zstd decode")
		}
		b = out
	}
	var items []types.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, types.Err(types.ErrCorruptCart, err, "json decode")
	}
	if items == nil {
		items = []types.LineItem{}
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it.Amount < 1 {
			return nil, types.Err(types.ErrCorruptCart, nil, "item %d has amount %d", it.ID, it.Amount)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, types.Err(types.ErrCorruptCart, nil, "item %d appears twice", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}
