// Package snapshot reads catalog seed files. JSON files use the same document
// layout as the JSON backend; YAML files hold a list of books with the same keys.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage/jsonfile"
)

var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Load reads the books of a .json, .yaml or .yml snapshot.
func Load(path string) ([]entities.Book, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		store, err := jsonfile.NewCatalogStore(path)
		if err != nil {
			return nil, err
		}
		return store.LoadAll()
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

type yamlBook struct {
	ID              string         `yaml:"id"`
	Title           string         `yaml:"title"`
	Author          string         `yaml:"author"`
	Genre           entities.Genre `yaml:"genre"`
	PublicationYear int            `yaml:"publicationYear"`
	ISBN            string         `yaml:"isbn"`
	Available       *bool          `yaml:"available"`
	AddedDate       time.Time      `yaml:"addedDate"`
}

func loadYAML(path string) ([]entities.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var rows []yamlBook
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	books := make([]entities.Book, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		available := true
		if r.Available != nil {
			available = *r.Available
		}
		books = append(books, entities.Book{
			ID:              r.ID,
			Title:           r.Title,
			Author:          r.Author,
			Genre:           r.Genre.Normalize(),
			PublicationYear: r.PublicationYear,
			ISBN:            r.ISBN,
			Available:       available,
			AddedAt:         r.AddedDate,
		})
	}
	return books, nil
}
