package spawn

import (
	"sort"
)

// Entry is one configuration key and its value.
type Entry struct {
	Key   string
	Value any
}

// Config is an ordered list of configuration entries. Entries are applied
// in order, so a later entry can override an earlier one.
type Config []Entry

// C builds a Config from alternating keys and values. A trailing key
// without a value is dropped, as are non-string keys.
func C(kv ...any) Config {
	cfg := make(Config, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			cfg = append(cfg, Entry{Key: k, Value: kv[i+1]})
		}
	}
	return cfg
}

// Get returns the last value stored under key.
func (c Config) Get(key string) (any, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Key == key {
			return c[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (c Config) Keys() []string {
	keys := make([]string, len(c))
	for i, e := range c {
		keys[i] = e.Key
	}
	return keys
}

// asConfig reports whether v is a key/value mapping and returns it in
// application order. Go maps have no order, so their keys are sorted.
func asConfig(v any) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, true
	case []Entry:
		return Config(m), true
	case Entry:
		return Config{m}, true
	case map[string]any:
		return fromMap(m), true
	case map[string]string:
		cfg := make(Config, 0, len(m))
		for _, k := range sortedKeys(m) {
			cfg = append(cfg, Entry{Key: k, Value: m[k]})
		}
		return cfg, true
	}
	return nil, false
}

func fromMap(m map[string]any) Config {
	cfg := make(Config, 0, len(m))
	for _, k := range sortedKeys(m) {
		cfg = append(cfg, Entry{Key: k, Value: m[k]})
	}
	return cfg
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
