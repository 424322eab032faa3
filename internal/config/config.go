// Package config loads facet configuration from YAML or CUE files.
//
// A configuration names the database, the logging setup, the models and the
// criteria declared on each model:
//
//	database: { driver: sqlite3, dsn: "catalog.db" }
//	log:      { level: info, format: text }
//	models:
//	  nodes:  { table: nodes, key: nid }
//	  people: { table: people, key: id, parent: nodes }
//	facets:
//	  nodes:
//	    created: date
//	  people:
//	    online: { type: boolean, column: is_online }
//	    name: basic
//	    gender: { type: pairs, pairs: [{value: f, label: female}] }
//
// Models and criteria keep their declaration order. Several files can be
// combined with Merge.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/facets/internal/criterion"
	"github.com/roach88/facets/internal/model"
	"github.com/roach88/facets/internal/store"
)

// Config is a loaded configuration.
type Config struct {
	Database store.Config
	Log      LogConfig
	Models   []ModelConfig
	Facets   []ModelFacets
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug | info | warn | error
	Format string `yaml:"format" json:"format"` // text | json
}

// SlogLevel returns the configured level, Info when unset or unknown.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ModelConfig declares a model.
type ModelConfig struct {
	ID     string `yaml:"-" json:"-"`
	Table  string `yaml:"table" json:"table"`
	Key    string `yaml:"key" json:"key"`
	Parent string `yaml:"parent" json:"parent"`
}

// ModelFacets lists the criteria declared on one model, in order.
type ModelFacets struct {
	Model    string
	Criteria []FacetConfig
}

// FacetConfig declares one criterion.
type FacetConfig struct {
	ID     string           `yaml:"-" json:"-"`
	Type   string           `yaml:"type" json:"type"`
	Column string           `yaml:"column" json:"column"`
	Pairs  []criterion.Pair `yaml:"pairs" json:"pairs"`
}

// Definition converts the declaration for a criterion.Registry.
func (f FacetConfig) Definition() criterion.Definition {
	return criterion.Definition{Type: f.Type, Column: f.Column, Pairs: f.Pairs}
}

// Load reads a configuration file, choosing the format by extension:
// .yaml and .yml for YAML, .cue for CUE.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "configuration file not found", File: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), File: path}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, path)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return nil, &LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported configuration format %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
			File:    path,
		}
	}
}

// LoadAll loads every path and merges them in order.
func LoadAll(paths ...string) (*Config, error) {
	fragments := make([]*Config, 0, len(paths))
	for _, p := range paths {
		cfg, err := Load(p)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, cfg)
	}
	return Merge(fragments...), nil
}

// Merge combines fragments in order. Later database and log settings
// override earlier non-empty ones. Models are replaced by id. Criteria of the
// same model are merged: a later criterion replaces an earlier one with the
// same id in place, new ids are appended.
func Merge(fragments ...*Config) *Config {
	out := &Config{}
	for _, f := range fragments {
		if f == nil {
			continue
		}

		if f.Database.Driver != "" {
			out.Database.Driver = f.Database.Driver
		}
		if f.Database.DSN != "" {
			out.Database.DSN = f.Database.DSN
		}
		if f.Database.MySQL != nil {
			mc := *f.Database.MySQL
			out.Database.MySQL = &mc
		}
		if f.Log.Level != "" {
			out.Log.Level = f.Log.Level
		}
		if f.Log.Format != "" {
			out.Log.Format = f.Log.Format
		}

		for _, m := range f.Models {
			out.setModel(m)
		}
		for _, mf := range f.Facets {
			out.mergeFacets(mf)
		}
	}
	return out
}

func (c *Config) setModel(m ModelConfig) {
	for i, existing := range c.Models {
		if existing.ID == m.ID {
			c.Models[i] = m
			return
		}
	}
	c.Models = append(c.Models, m)
}

func (c *Config) mergeFacets(mf ModelFacets) {
	var target *ModelFacets
	for i := range c.Facets {
		if c.Facets[i].Model == mf.Model {
			target = &c.Facets[i]
			break
		}
	}
	if target == nil {
		c.Facets = append(c.Facets, ModelFacets{Model: mf.Model})
		target = &c.Facets[len(c.Facets)-1]
	}

next:
	for _, f := range mf.Criteria {
		for i, existing := range target.Criteria {
			if existing.ID == f.ID {
				target.Criteria[i] = f
				continue next
			}
		}
		target.Criteria = append(target.Criteria, f)
	}
}

// Model returns the declaration of model id.
func (c *Config) Model(id string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// Catalog builds the model catalog. Models that only appear under facets are
// created with their id as table name. Run Validate first for a full error
// report; Catalog stops at the first unresolvable parent.
func (c *Config) Catalog() (*model.Catalog, error) {
	cat := model.NewCatalog()
	models := make(map[string]*model.Model)

	for _, mc := range c.Models {
		table := mc.Table
		if table == "" {
			table = mc.ID
		}
		m := &model.Model{ID: mc.ID, Table: table, Key: mc.Key}
		models[mc.ID] = m
		cat.AddModel(m)
	}
	for _, mf := range c.Facets {
		if _, ok := models[mf.Model]; ok {
			continue
		}
		m := &model.Model{ID: mf.Model, Table: mf.Model}
		models[mf.Model] = m
		cat.AddModel(m)
	}

	for _, mc := range c.Models {
		if mc.Parent == "" {
			continue
		}
		parent, ok := models[mc.Parent]
		if !ok {
			return nil, &LoadError{
				Code:    ErrCodeUnknownParent,
				Message: fmt.Sprintf("model %q: parent %q is not defined", mc.ID, mc.Parent),
			}
		}
		models[mc.ID].Parent = parent
	}

	for _, mf := range c.Facets {
		entries := make([]criterion.Entry, len(mf.Criteria))
		for i, f := range mf.Criteria {
			entries[i] = criterion.Entry{ID: f.ID, Definition: f.Definition()}
		}
		cat.SetFacets(mf.Model, entries)
	}

	return cat, nil
}
