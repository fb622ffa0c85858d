package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

type catalogType struct {
	Code                  string `toml:"code" yaml:"code"`
	Name                  string `toml:"name" yaml:"name"`
	RegulatoryBody        string `toml:"regulatory_body" yaml:"regulatory_body"`
	DefaultIntervalMonths *int   `toml:"default_interval_months" yaml:"default_interval_months"`
	Active                *bool  `toml:"active" yaml:"active"`
}

type catalog struct {
	Version int           `toml:"version" yaml:"version"`
	Types   []catalogType `toml:"types" yaml:"types"`
}

// TypeUpserter is the registry write used by the seed loader.
type TypeUpserter interface {
	UpsertQualificationType(ctx context.Context, qt domain.QualificationType) (domain.QualificationType, error)
}

// LoadCatalog reads a qualification type catalog. The format follows the file
// extension: .toml, .yaml or .yml.
func LoadCatalog(path string) ([]domain.QualificationType, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "read catalog")
	}

	var parsed catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(raw, &parsed)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &parsed)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "decode catalog %s", path)
	}
	return parsed.validate()
}

func (c catalog) validate() ([]domain.QualificationType, error) {
	if c.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version %d: expected version = 1", c.Version)
	}

	seen := make(map[string]struct{}, len(c.Types))
	out := make([]domain.QualificationType, 0, len(c.Types))
	for i, item := range c.Types {
		code := strings.ToUpper(strings.TrimSpace(item.Code))
		if code == "" {
			return nil, fmt.Errorf("types[%d].code is required", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("types[%d]: duplicate code %s", i, code)
		}
		seen[code] = struct{}{}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("types.%s.name is required", code)
		}
		if item.DefaultIntervalMonths != nil && *item.DefaultIntervalMonths <= 0 {
			return nil, fmt.Errorf("types.%s.default_interval_months must be positive", code)
		}

		active := true
		if item.Active != nil {
			active = *item.Active
		}
		out = append(out, domain.QualificationType{
			Code:                  code,
			Name:                  name,
			RegulatoryBody:        strings.TrimSpace(item.RegulatoryBody),
			DefaultIntervalMonths: item.DefaultIntervalMonths,
			IsActive:              active,
		})
	}
	return out, nil
}

// Apply upserts every catalog entry by code and returns how many were written.
func Apply(ctx context.Context, repo TypeUpserter, types []domain.QualificationType) (int, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.seed"))
	for i, qt := range types {
		if _, err := repo.UpsertQualificationType(ctx, qt); err != nil {
			return i, errs.Wrapf(err, "upsert qualification type %s", qt.Code)
		}
		logging.Debug(logCtx, "qualification type seeded", slog.String("code", qt.Code))
	}
	logging.Info(logCtx, "qualification types seeded", slog.Int("count", len(types)))
	return len(types), nil
}
