package descriptor

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/spawn/pkg/spawn"
)

// decodeYAML decodes into a yaml.Node tree, which keeps mapping order.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])

	case yaml.MappingNode:
		cfg := make(spawn.Config, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, &PositionError{Line: k.Line, Column: k.Column, Err: fmt.Errorf("mapping keys must be scalars")}
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			cfg = append(cfg, spawn.Entry{Key: k.Value, Value: v})
		}
		return cfg, nil

	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case yaml.AliasNode:
		return yamlValue(n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &PositionError{Line: n.Line, Column: n.Column, Err: err}
		}
		return v, nil
	}
	return nil, &PositionError{Line: n.Line, Column: n.Column, Err: fmt.Errorf("unsupported node kind %d", n.Kind)}
}
