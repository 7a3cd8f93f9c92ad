// Package yaml loads the tracked-item configuration from a YAML or JSON
// file.
package yaml

import (
	"errors"
	"fmt"
	"os"

	"github.com/fwojciec/pricewatch"
	yaml "gopkg.in/yaml.v3"
)

// itemConfig is the file form of an item. It accepts "css" and "regex" as
// alternative spellings of "selector" and "pattern".
type itemConfig struct {
	pricewatch.Item `yaml:",inline"`

	CSS   string `yaml:"css"`
	Regex string `yaml:"regex"`
}

func (c itemConfig) toItem() *pricewatch.Item {
	item := c.Item
	if item.Selector == "" {
		item.Selector = c.CSS
	}
	if item.Pattern == "" {
		item.Pattern = c.Regex
	}
	return &item
}

// fileConfig is the wrapped form of the configuration file.
type fileConfig struct {
	Items []itemConfig `yaml:"items"`
}

// LoadItems reads items from the file at path.
func LoadItems(path string) ([]*pricewatch.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "items file %s not found", path)
		}
		return nil, fmt.Errorf("reading items file: %w", err)
	}
	return ParseItems(data)
}

// ParseItems decodes items from YAML or JSON. The document is either a
// list of items or a mapping with an "items" list. Names must be unique,
// since the name keys the stored price. Items are not validated here: a
// broken item is reported on its own line by the tracker.
func ParseItems(data []byte) ([]*pricewatch.Item, error) {
	configs, err := decode(data)
	if err != nil {
		return nil, err
	}

	items := make([]*pricewatch.Item, 0, len(configs))
	seen := make(map[string]bool, len(configs))
	for i, c := range configs {
		item := c.toItem()
		if item.Name != "" && seen[item.Name] {
			return nil, pricewatch.Errorf(pricewatch.EINVALID, "item %d: duplicate name %q", i+1, item.Name)
		}
		seen[item.Name] = true
		items = append(items, item)
	}
	return items, nil
}

func decode(data []byte) ([]itemConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parsing items: %v", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var configs []itemConfig
		if err := doc.Decode(&configs); err != nil {
			return nil, pricewatch.Errorf(pricewatch.EINVALID, "parsing items: %v", err)
		}
		return configs, nil
	case yaml.MappingNode:
		var cfg fileConfig
		if err := doc.Decode(&cfg); err != nil {
			return nil, pricewatch.Errorf(pricewatch.EINVALID, "parsing items: %v", err)
		}
		return cfg.Items, nil
	default:
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parsing items: expected a list or an items mapping")
	}
}
