package osm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type restrictionFile struct {
	Restrictions []RestrictionRecord `yaml:"restrictions"`
}

// Decode reads a YAML document with a top-level "restrictions" list and
// validates every record.
func Decode(r io.Reader) ([]RestrictionRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f restrictionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode restrictions: %w", err)
	}
	v := validator.New()
	for i, rec := range f.Restrictions {
		if err := v.Struct(rec); err != nil {
			return nil, fmt.Errorf("restriction %d (relation %d): %w", i, rec.RelationID, err)
		}
	}
	return f.Restrictions, nil
}

func LoadFile(path string) ([]RestrictionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// FileSource loads restriction records from a YAML file on every call.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]RestrictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}
