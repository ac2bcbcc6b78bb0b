package photo

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of portfolio sections
type Category string

const (
	CategoryNature  Category = "nature"
	CategoryStreet  Category = "street"
	CategoryConcert Category = "concert"
)

// Categories in navigation order
var Categories = []Category{CategoryNature, CategoryStreet, CategoryConcert}

// Valid reports whether c is a recognised category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts caller input into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
	}
	return c, nil
}

// Featured priority ranges enforced by the schema
const (
	MinHomepagePriority = 1
	MaxHomepagePriority = 7

	// NavigationPriority marks the category's navigation photo; 1..MaxCategoryPriority
	// order the category overview.
	NavigationPriority  = 0
	MaxCategoryPriority = 4

	// CountryRepresentative marks the photo shown for a country in navigation
	CountryRepresentative = 1
)

// Photo is one portfolio image's metadata (the file itself lives in the asset store)
type Photo struct {
	ID               int64     `db:"id" json:"id"`
	Filename         string    `db:"filename" json:"filename"`
	Category         Category  `db:"category" json:"category"`
	Caption          string    `db:"caption" json:"caption"`
	Location         string    `db:"location" json:"location"`
	Country          string    `db:"country" json:"country"`
	SubCategory      *string   `db:"sub_category" json:"sub_category,omitempty"`
	Date             *string   `db:"date" json:"date,omitempty"`
	HomepageFeatured *int      `db:"homepage_featured" json:"homepage_featured,omitempty"`
	CategoryFeatured *int      `db:"category_featured" json:"category_featured,omitempty"`
	CountryFeatured  *int      `db:"country_featured" json:"country_featured,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsCategoryNavigation reports whether p represents its category in navigation
func (p *Photo) IsCategoryNavigation() bool {
	return p.CategoryFeatured != nil && *p.CategoryFeatured == NavigationPriority
}

// IsCountryRepresentative reports whether p represents its country in navigation
func (p *Photo) IsCountryRepresentative() bool {
	return p.CountryFeatured != nil && *p.CountryFeatured == CountryRepresentative
}

// Identifier selects a photo by id or by filename. Exactly one must be set.
type Identifier struct {
	ID       int64
	Filename string
}

// ByID identifies a photo by its id
func ByID(id int64) Identifier { return Identifier{ID: id} }

// ByFilename identifies a photo by its filename
func ByFilename(filename string) Identifier { return Identifier{Filename: filename} }

// Validate rejects empty and ambiguous identifiers
func (i Identifier) Validate() error {
	switch {
	case i.ID < 0:
		return fmt.Errorf("%w: negative id %d", ErrInvalidArgument, i.ID)
	case i.ID > 0 && i.Filename != "":
		return fmt.Errorf("%w: identifier has both id and filename", ErrInvalidArgument)
	case i.ID == 0 && i.Filename == "":
		return fmt.Errorf("%w: identifier needs an id or a filename", ErrInvalidArgument)
	}
	return nil
}

func (i Identifier) String() string {
	if i.ID > 0 {
		return fmt.Sprintf("id %d", i.ID)
	}
	return fmt.Sprintf("filename %q", i.Filename)
}
