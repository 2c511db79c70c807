package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// LanguagesFileName is the catalog file inside the triage home.
const LanguagesFileName = "languages.yaml"

// languagesFile is the on-disk layout of the catalog.
type languagesFile struct {
	Languages []domain.Language `yaml:"languages"`
}

// LoadLanguageCatalog reads path and layers its entries over the built-in
// catalog. A missing file yields the built-in catalog unchanged.
func LoadLanguageCatalog(path string) (domain.LanguageCatalog, error) {
	builtin := domain.DefaultLanguageCatalog()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return builtin, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var file languagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	overrides := make(domain.LanguageCatalog, len(file.Languages))
	for i, lang := range file.Languages {
		code := domain.NormaliseLanguage(lang.Code)
		if lang.Code == "" {
			return nil, fmt.Errorf("parse %s: language %d has no code", filepath.Base(path), i+1)
		}
		lang.Code = code
		overrides[code] = lang
	}

	return builtin.Merge(overrides), nil
}
