package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"trio-lite/replay"
)

const tapeCacheSize = 128

// Shared codec instances; both are safe for concurrent use via EncodeAll
// and DecodeAll.
var (
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
)

func init() {
	var err error
	zstdEnc, err = zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	zstdDec, err = zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
}

func compressTape(tape *replay.MatchTape) ([]byte, error) {
	if tape == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tape)
	if err != nil {
		return nil, fmt.Errorf("marshal tape: %w", err)
	}
	return zstdEnc.EncodeAll(raw, nil), nil
}

func decompressTape(blob []byte) (*replay.MatchTape, error) {
	if len(blob) == 0 {
		return nil, ErrNotFound
	}
	raw, err := zstdDec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress tape: %w", err)
	}
	var tape replay.MatchTape
	if err := json.Unmarshal(raw, &tape); err != nil {
		return nil, fmt.Errorf("unmarshal tape: %w", err)
	}
	return &tape, nil
}

// tapeCache keeps recently served tapes hot; decompression is the
// expensive part of the read path.
type tapeCache struct {
	cache *lru.Cache[string, *replay.MatchTape]
}

func newTapeCache() *tapeCache {
	cache, err := lru.New[string, *replay.MatchTape](tapeCacheSize)
	if err != nil {
		panic(err)
	}
	return &tapeCache{cache: cache}
}

func (c *tapeCache) add(matchID string, tape *replay.MatchTape) {
	c.cache.Add(matchID, tape)
}

func (c *tapeCache) get(matchID string) (*replay.MatchTape, bool) {
	return c.cache.Get(matchID)
}

func encodeInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func decodeInts(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
