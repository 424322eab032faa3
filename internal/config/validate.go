package config

import (
	"fmt"
	"strings"

	"github.com/roach88/facets/internal/criterion"
	"github.com/roach88/facets/internal/store"
)

var knownDrivers = []string{"", store.DriverSQLite3, store.DriverSQLite, store.DriverMySQL}

// Validate checks the configuration and returns every problem found.
// Criterion types are resolved against reg; nil means the built-in types.
func (c *Config) Validate(reg *criterion.Registry) []error {
	if reg == nil {
		reg = criterion.NewRegistry()
	}

	var errs []error
	add := func(code, format string, args ...any) {
		errs = append(errs, &LoadError{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if !contains(knownDrivers, c.Database.Driver) {
		add(ErrCodeUnknownDriver, "database: unsupported driver %q (want %s)",
			c.Database.Driver, strings.Join(knownDrivers[1:], ", "))
	}

	if c.Log.Level != "" && !contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		add(ErrCodeInvalidLog, "log: unknown level %q", c.Log.Level)
	}
	if c.Log.Format != "" && !contains([]string{"text", "json"}, c.Log.Format) {
		add(ErrCodeInvalidLog, "log: unknown format %q", c.Log.Format)
	}

	parents := make(map[string]string, len(c.Models))
	for _, m := range c.Models {
		parents[m.ID] = m.Parent
	}
	for _, m := range c.Models {
		if m.Parent == "" {
			continue
		}
		if _, ok := parents[m.Parent]; !ok {
			add(ErrCodeUnknownParent, "model %q: parent %q is not defined", m.ID, m.Parent)
			continue
		}
		if cycle := parentCycle(m.ID, parents); cycle != nil {
			add(ErrCodeParentCycle, "model %q: parent cycle %s", m.ID, strings.Join(cycle, " -> "))
		}
	}

	for _, mf := range c.Facets {
		if _, ok := parents[mf.Model]; !ok {
			add(ErrCodeUnknownModel, "facets: model %q is not defined", mf.Model)
		}
		for _, f := range mf.Criteria {
			typ := f.Type
			if typ == "" {
				typ = criterion.TypeBasic
			}
			if !reg.Has(typ) {
				add(ErrCodeUnknownType, "model %q: criterion %q: unknown type %q (registered: %s)",
					mf.Model, f.ID, typ, strings.Join(reg.Types(), ", "))
				continue
			}
			if typ == criterion.TypePairs && len(f.Pairs) == 0 {
				add(ErrCodeInvalidFacet, "model %q: criterion %q: pairs type requires pairs", mf.Model, f.ID)
			}
		}
	}

	return errs
}

// parentCycle returns the chain from id back to itself, or nil.
func parentCycle(id string, parents map[string]string) []string {
	chain := []string{id}
	seen := map[string]bool{id: true}
	for cur := parents[id]; cur != ""; cur = parents[cur] {
		chain = append(chain, cur)
		if cur == id {
			return chain
		}
		if seen[cur] {
			// Loop further up the chain; reported on its own members.
			return nil
		}
		seen[cur] = true
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
