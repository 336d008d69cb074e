package descriptor

import (
	"bytes"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/spawn/pkg/spawn"
)

// decodeTOML decodes into maps and restores key order from the decoder's
// metadata. Keys the metadata does not list (inline tables inside arrays)
// fall back to sorted order after the listed ones.
func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		if pe, ok := err.(toml.ParseError); ok {
			line, col := position(data, int64(pe.Position.Start))
			if pe.Position.Line > 0 {
				line = pe.Position.Line
			}
			return nil, &PositionError{Line: line, Column: col, Err: err}
		}
		return nil, err
	}

	order := make(map[string]int)
	for i, k := range md.Keys() {
		path := strings.Join(k, "\x00")
		if _, ok := order[path]; !ok {
			order[path] = i
		}
	}
	return tomlValue(raw, "", order), nil
}

func tomlValue(v any, path string, order map[string]int) any {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		rank := func(k string) int {
			if i, ok := order[join(path, k)]; ok {
				return i
			}
			return len(order)
		}
		sort.Slice(keys, func(i, j int) bool {
			ri, rj := rank(keys[i]), rank(keys[j])
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		})

		cfg := make(spawn.Config, 0, len(keys))
		for _, k := range keys {
			cfg = append(cfg, spawn.Entry{Key: k, Value: tomlValue(x[k], join(path, k), order)})
		}
		return cfg

	case []map[string]any:
		list := make([]any, len(x))
		for i, m := range x {
			list[i] = tomlValue(m, path, order)
		}
		return list

	case []any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = tomlValue(item, path, order)
		}
		return list

	case int64:
		return normalizeInt(x)
	}
	return v
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "\x00" + key
}
