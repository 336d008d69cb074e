package descriptor

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/vango-dev/spawn/pkg/spawn"
)

// decodeMsgPack reads maps entry by entry so their order survives.
func decodeMsgPack(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	return msgpackValue(dec)
}

func msgpackValue(dec *msgpack.Decoder) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		cfg := make(spawn.Config, 0, n)
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			v, err := msgpackValue(dec)
			if err != nil {
				return nil, err
			}
			cfg = append(cfg, spawn.Entry{Key: key, Value: v})
		}
		return cfg, nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := msgpackValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}

	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case int64:
		return normalizeInt(x), nil
	case uint64:
		if n, err := safecast.Conv[int64](x); err == nil {
			return normalizeInt(n), nil
		}
	}
	return v, nil
}

// EncodeMsgPack writes v as MessagePack. spawn.Config is written as a map
// in entry order; Go maps are written with sorted keys.
func EncodeMsgPack(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return encodeValue(enc, v)
}

func encodeValue(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case spawn.Config:
		if err := enc.EncodeMapLen(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := encodeValue(enc, e.Value); err != nil {
				return fmt.Errorf("%s: %w", e.Key, err)
			}
		}
		return nil

	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cfg := make(spawn.Config, len(keys))
		for i, k := range keys {
			cfg[i] = spawn.Entry{Key: k, Value: x[k]}
		}
		return encodeValue(enc, cfg)

	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, item := range x {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(v)
}
