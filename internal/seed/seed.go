// Package seed loads item categories and styles from TOML files.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

//go:embed default.toml
var defaultTaxonomy string

type Category struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
	IsRequired  bool   `toml:"is_required"`
}

type Style struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
}

type File struct {
	Categories []Category `toml:"categories"`
	Styles     []Style    `toml:"styles"`
}

type Result struct {
	Created int
	Skipped int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d already present", r.Created, r.Skipped)
}

// Decode reads a taxonomy file and rejects unknown keys.
func Decode(r io.Reader) (*File, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in taxonomy: %v", undecoded)
	}
	return &f, nil
}

// Default is the taxonomy shipped with the service.
func Default() *File {
	f, err := Decode(strings.NewReader(defaultTaxonomy))
	if err != nil {
		panic(err)
	}
	return f
}

// Apply creates every entry through the registry services so the usual
// validation holds. Entries that already exist are skipped.
func Apply(ctx context.Context, categories *services.CategoryService, styles *services.StyleService, f *File) (Result, error) {
	var res Result
	tally := func(err error) error {
		switch {
		case err == nil:
			res.Created++
		case apperr.KindOf(err) == apperr.KindConflict:
			res.Skipped++
		default:
			return err
		}
		return nil
	}

	for _, c := range f.Categories {
		_, err := categories.Create(ctx, dto.CreateCategoryRequest{
			Name:        c.Name,
			DisplayName: c.DisplayName,
			IsRequired:  &c.IsRequired,
		})
		if err := tally(err); err != nil {
			return res, fmt.Errorf("category %q: %w", c.Name, err)
		}
	}
	for _, s := range f.Styles {
		_, err := styles.Create(ctx, dto.CreateStyleRequest{Name: s.Name, DisplayName: s.DisplayName})
		if err := tally(err); err != nil {
			return res, fmt.Errorf("style %q: %w", s.Name, err)
		}
	}
	return res, nil
}
