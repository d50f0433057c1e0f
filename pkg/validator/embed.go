package validator

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed validators/*.yaml
var embeddedValidators embed.FS

// LoadValidatorsFS loads every *.yaml validator file in dir of fsys, in
// lexical file order.
func LoadValidatorsFS(fsys fs.FS, dir string) ([]Validator, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list validators in %s: %w", dir, err)
	}

	var validators []Validator
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		loaded, err := LoadValidatorsFromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		validators = append(validators, loaded...)
	}
	return validators, nil
}

// LoadEmbeddedValidators loads the validator definitions compiled into the
// binary.
func LoadEmbeddedValidators() ([]Validator, error) {
	return LoadValidatorsFS(embeddedValidators, "validators")
}
