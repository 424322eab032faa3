package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/facets/internal/store"
)

// yamlFile mirrors the top level of a YAML configuration.
type yamlFile struct {
	Database store.Config `yaml:"database"`
	Log      LogConfig    `yaml:"log"`
	Models   yaml.Node    `yaml:"models"`
	Facets   yaml.Node    `yaml:"facets"`
}

// ParseYAML parses YAML configuration data. filename is used in errors.
// Unknown keys are rejected.
func ParseYAML(data []byte, filename string) (*Config, error) {
	var f yamlFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: filename}
	}

	cfg := &Config{Database: f.Database, Log: f.Log}

	models, err := yamlModels(&f.Models, filename)
	if err != nil {
		return nil, err
	}
	cfg.Models = models

	facets, err := yamlFacets(&f.Facets, filename)
	if err != nil {
		return nil, err
	}
	cfg.Facets = facets

	return cfg, nil
}

func yamlModels(node *yaml.Node, filename string) ([]ModelConfig, error) {
	var models []ModelConfig
	err := eachPair(node, filename, "models", func(key, val *yaml.Node) error {
		if err := checkKeys(val, filename, "table", "key", "parent"); err != nil {
			return err
		}
		var m ModelConfig
		if err := val.Decode(&m); err != nil {
			return yamlError(ErrCodeLoadFailed, val, filename, "model %q: %v", key.Value, err)
		}
		m.ID = key.Value
		models = append(models, m)
		return nil
	})
	return models, err
}

func yamlFacets(node *yaml.Node, filename string) ([]ModelFacets, error) {
	var facets []ModelFacets
	err := eachPair(node, filename, "facets", func(modelKey, modelVal *yaml.Node) error {
		mf := ModelFacets{Model: modelKey.Value}
		err := eachPair(modelVal, filename, "facets of "+modelKey.Value, func(key, val *yaml.Node) error {
			f, err := yamlFacet(key, val, filename)
			if err != nil {
				return err
			}
			mf.Criteria = append(mf.Criteria, f)
			return nil
		})
		if err != nil {
			return err
		}
		facets = append(facets, mf)
		return nil
	})
	return facets, err
}

// yamlFacet accepts either a bare type name or a {type, column, pairs} map.
func yamlFacet(key, val *yaml.Node, filename string) (FacetConfig, error) {
	f := FacetConfig{ID: key.Value}

	switch val.Kind {
	case yaml.ScalarNode:
		f.Type = val.Value
	case yaml.MappingNode:
		if err := checkKeys(val, filename, "type", "column", "pairs"); err != nil {
			return f, err
		}
		if err := val.Decode(&f); err != nil {
			return f, yamlError(ErrCodeInvalidFacet, val, filename, "criterion %q: %v", key.Value, err)
		}
		f.ID = key.Value
	default:
		return f, yamlError(ErrCodeInvalidFacet, val, filename, "criterion %q: expected a type name or a mapping", key.Value)
	}
	return f, nil
}

// eachPair calls fn for every key/value of a mapping node, in document
// order. A zero node (absent key) yields no pairs.
func eachPair(node *yaml.Node, filename, what string, fn func(key, val *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return yamlError(ErrCodeLoadFailed, node, filename, "%s: expected a mapping", what)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i], node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// checkKeys rejects mapping keys outside allowed. Node.Decode does not
// inherit the decoder's KnownFields setting.
func checkKeys(node *yaml.Node, filename string, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return yamlError(ErrCodeLoadFailed, node, filename, "expected a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return yamlError(ErrCodeLoadFailed, key, filename, "unknown field %q", key.Value)
		}
	}
	return nil
}

func yamlError(code string, node *yaml.Node, filename, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		File:    filename,
		Line:    node.Line,
	}
}
