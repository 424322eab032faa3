package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// ParseCUE evaluates CUE configuration source. filename is used in errors.
// The file may use any CUE feature (references, defaults, comprehensions) as
// long as the result is concrete.
func ParseCUE(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(ErrCodeLoadFailed, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err)
	}

	cfg := &Config{}

	if dbVal := v.LookupPath(cue.ParsePath("database")); dbVal.Exists() {
		if err := dbVal.Decode(&cfg.Database); err != nil {
			return nil, cueValueError(ErrCodeLoadFailed, dbVal, "database: %v", err)
		}
	}
	if logVal := v.LookupPath(cue.ParsePath("log")); logVal.Exists() {
		if err := logVal.Decode(&cfg.Log); err != nil {
			return nil, cueValueError(ErrCodeLoadFailed, logVal, "log: %v", err)
		}
	}

	models, err := cueModels(v.LookupPath(cue.ParsePath("models")))
	if err != nil {
		return nil, err
	}
	cfg.Models = models

	facets, err := cueFacets(v.LookupPath(cue.ParsePath("facets")))
	if err != nil {
		return nil, err
	}
	cfg.Facets = facets

	return cfg, nil
}

func cueModels(v cue.Value) ([]ModelConfig, error) {
	if !v.Exists() {
		return nil, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, cueValueError(ErrCodeLoadFailed, v, "models: %v", err)
	}

	var models []ModelConfig
	for iter.Next() {
		var m ModelConfig
		if err := iter.Value().Decode(&m); err != nil {
			return nil, cueValueError(ErrCodeLoadFailed, iter.Value(), "model %q: %v", iter.Selector().String(), err)
		}
		m.ID = iter.Selector().Unquoted()
		models = append(models, m)
	}
	return models, nil
}

func cueFacets(v cue.Value) ([]ModelFacets, error) {
	if !v.Exists() {
		return nil, nil
	}

	modelIter, err := v.Fields()
	if err != nil {
		return nil, cueValueError(ErrCodeLoadFailed, v, "facets: %v", err)
	}

	var facets []ModelFacets
	for modelIter.Next() {
		mf := ModelFacets{Model: modelIter.Selector().Unquoted()}

		iter, err := modelIter.Value().Fields()
		if err != nil {
			return nil, cueValueError(ErrCodeLoadFailed, modelIter.Value(), "facets of %s: %v", mf.Model, err)
		}
		for iter.Next() {
			f, err := cueFacet(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			mf.Criteria = append(mf.Criteria, f)
		}
		facets = append(facets, mf)
	}
	return facets, nil
}

func cueFacet(id string, v cue.Value) (FacetConfig, error) {
	f := FacetConfig{ID: id}

	switch v.Kind() {
	case cue.StringKind:
		typ, err := v.String()
		if err != nil {
			return f, cueValueError(ErrCodeInvalidFacet, v, "criterion %q: %v", id, err)
		}
		f.Type = typ
	case cue.StructKind:
		if err := v.Decode(&f); err != nil {
			return f, cueValueError(ErrCodeInvalidFacet, v, "criterion %q: %v", id, err)
		}
		f.ID = id
	default:
		return f, cueValueError(ErrCodeInvalidFacet, v, "criterion %q: expected a type name or a struct", id)
	}
	return f, nil
}

// cueError converts a CUE evaluation error, keeping the first position.
func cueError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: errors.Details(err, nil)}
	if positions := errors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
		le.Message = err.Error()
	}
	return le
}

func cueValueError(code string, v cue.Value, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     v.Pos(),
	}
}
