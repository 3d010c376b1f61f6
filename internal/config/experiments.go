package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region load

// LoadExperiments reads experiment definitions from path. A missing file is
// not an error: it yields no experiments, which leaves the plugin idle.
func LoadExperiments(path string, logger experiment.Logger) ([]experiment.RawExperiment, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("prompt-experiments: config %s not found, no experiments loaded", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read experiments %s: %w", path, err)
	}
	raw, err := ParseExperiments(data, logger)
	if err != nil {
		return nil, fmt.Errorf("parse experiments %s: %w", path, err)
	}
	return raw, nil
}

// #endregion

// #region parse

// ParseExperiments decodes a YAML (or JSON) document that is either a list of
// experiments or a mapping with an `experiments` list. Entries are decoded
// one at a time: a malformed entry is logged and dropped, the rest survive.
func ParseExperiments(data []byte, logger experiment.Logger) ([]experiment.RawExperiment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil // empty document
	}

	list, err := experimentsNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, nil
	}

	raw := make([]experiment.RawExperiment, 0, len(list.Content))
	for i, entry := range list.Content {
		if entry.Kind != yaml.MappingNode {
			logger.Printf("prompt-experiments: skipping experiment at index %d: entry is not a mapping", i)
			continue
		}
		var r experiment.RawExperiment
		if err := entry.Decode(&r); err != nil {
			logger.Printf("prompt-experiments: skipping experiment %q: %v", scalarField(entry, "id"), err)
			continue
		}
		raw = append(raw, r)
	}
	return raw, nil
}

// experimentsNode returns the sequence node holding experiment entries.
func experimentsNode(root *yaml.Node) (*yaml.Node, error) {
	switch root.Kind {
	case yaml.SequenceNode:
		return root, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value != "experiments" {
				continue
			}
			v := root.Content[i+1]
			if v.Tag == "!!null" {
				return nil, nil
			}
			if v.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: experiments must be a list", v.Line)
			}
			return v, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("line %d: expected a list of experiments or an experiments key", root.Line)
	}
}

func scalarField(m *yaml.Node, key string) string {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].Kind == yaml.ScalarNode {
			return m.Content[i+1].Value
		}
	}
	return ""
}

// #endregion
