package photo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines photo data access interface
type Repository interface {
	Insert(ctx context.Context, photo *Photo) (int64, error)
	UpdatePartial(ctx context.Context, id Identifier, patch Patch) (*Photo, error)
	Get(ctx context.Context, id Identifier) (*Photo, error)
	ExistingFilenames(ctx context.Context, filenames []string) ([]string, error)
	// WithinTx runs fn against a repository bound to one transaction. The
	// transaction commits only if fn returns nil.
	WithinTx(ctx context.Context, fn func(Repository) error) error

	ListHomepageFeatured(ctx context.Context, limit int) ([]*Photo, error)
	GetCategoryNavigation(ctx context.Context, category Category) (*Photo, error)
	ListCategoryFeatured(ctx context.Context, category Category) ([]*Photo, error)
	ListByCategory(ctx context.Context, category Category) ([]*Photo, error)
	ListByCountry(ctx context.Context, country string) ([]*Photo, error)
	ListCountries(ctx context.Context) ([]string, error)
	ListCountryNavigation(ctx context.Context) ([]*Photo, error)
	// ListMarkerHolders returns every photo that is a category navigation
	// photo or a country representative
	ListMarkerHolders(ctx context.Context) ([]*Photo, error)
	ListAll(ctx context.Context) ([]*Photo, error)
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type repository struct {
	db *sqlx.DB // nil inside a transaction
	q  querier
}

// NewRepository creates new photo repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, q: db}
}

const photoSelectColumns = `
	id, filename, category, caption, location, country, sub_category, date,
	homepage_featured, category_featured, country_featured, created_at, updated_at
`

// newest first, undated last; ISO dates sort lexically
const chronologicalOrder = `ORDER BY date DESC NULLS LAST, id`

func (r *repository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&repository{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *repository) Insert(ctx context.Context, photo *Photo) (int64, error) {
	query := `
		INSERT INTO photos (
			filename, category, caption, location, country, sub_category, date,
			homepage_featured, category_featured, country_featured
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		photo.Filename,
		photo.Category,
		photo.Caption,
		photo.Location,
		photo.Country,
		photo.SubCategory,
		photo.Date,
		photo.HomepageFeatured,
		photo.CategoryFeatured,
		photo.CountryFeatured,
	).Scan(&photo.ID, &photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		return 0, mapDBError(err)
	}
	return photo.ID, nil
}

func (r *repository) UpdatePartial(ctx context.Context, id Identifier, patch Patch) (*Photo, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var sets []string
	var args []interface{}
	set := func(c Column, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", c, len(args)))
	}

	if patch.Category != nil {
		set(ColumnCategory, *patch.Category)
	}
	if patch.Caption != nil {
		set(ColumnCaption, *patch.Caption)
	}
	if patch.Location != nil {
		set(ColumnLocation, *patch.Location)
	}
	if patch.Country != nil {
		set(ColumnCountry, *patch.Country)
	}
	if patch.SubCategory != nil {
		set(ColumnSubCategory, *patch.SubCategory)
	}
	if patch.Date != nil {
		set(ColumnDate, *patch.Date)
	}
	if patch.HomepageFeatured != nil {
		set(ColumnHomepageFeatured, *patch.HomepageFeatured)
	}
	if patch.CategoryFeatured != nil {
		set(ColumnCategoryFeatured, *patch.CategoryFeatured)
	}
	if patch.CountryFeatured != nil {
		set(ColumnCountryFeatured, *patch.CountryFeatured)
	}
	sets = append(sets, "updated_at = NOW()")

	where, arg := id.where(len(args) + 1)
	args = append(args, arg)

	query := `UPDATE photos SET ` + strings.Join(sets, ", ") + ` WHERE ` + where +
		` RETURNING ` + photoSelectColumns

	var photo Photo
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&photo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, mapDBError(err)
	}
	return &photo, nil
}

func (r *repository) Get(ctx context.Context, id Identifier) (*Photo, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	where, arg := id.where(1)
	query := `SELECT ` + photoSelectColumns + ` FROM photos WHERE ` + where

	var photo Photo
	if err := r.q.GetContext(ctx, &photo, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &photo, nil
}

func (i Identifier) where(n int) (string, interface{}) {
	if i.ID > 0 {
		return fmt.Sprintf("id = $%d", n), i.ID
	}
	return fmt.Sprintf("filename = $%d", n), i.Filename
}

func (r *repository) ExistingFilenames(ctx context.Context, filenames []string) ([]string, error) {
	if len(filenames) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.q.SelectContext(ctx, &existing,
		`SELECT filename FROM photos WHERE filename = ANY($1) ORDER BY filename`,
		pq.Array(filenames))
	return existing, err
}

func (r *repository) ListHomepageFeatured(ctx context.Context, limit int) ([]*Photo, error) {
	query := `
		SELECT ` + photoSelectColumns + ` FROM photos
		WHERE homepage_featured IS NOT NULL
		ORDER BY homepage_featured, id
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *repository) GetCategoryNavigation(ctx context.Context, category Category) (*Photo, error) {
	query := `
		SELECT ` + photoSelectColumns + ` FROM photos
		WHERE category = $1 AND category_featured = $2
		ORDER BY id
		LIMIT 1
	`
	var photo Photo
	err := r.q.GetContext(ctx, &photo, query, category, NavigationPriority)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repository) ListCategoryFeatured(ctx context.Context, category Category) ([]*Photo, error) {
	query := `
		SELECT ` + photoSelectColumns + ` FROM photos
		WHERE category = $1 AND category_featured > $2
		ORDER BY category_featured, id
	`
	return r.list(ctx, query, category, NavigationPriority)
}

func (r *repository) ListByCategory(ctx context.Context, category Category) ([]*Photo, error) {
	query := `SELECT ` + photoSelectColumns + ` FROM photos WHERE category = $1 ` + chronologicalOrder
	return r.list(ctx, query, category)
}

func (r *repository) ListByCountry(ctx context.Context, country string) ([]*Photo, error) {
	query := `SELECT ` + photoSelectColumns + ` FROM photos WHERE country = $1 ` + chronologicalOrder
	return r.list(ctx, query, country)
}

func (r *repository) ListCountries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.q.SelectContext(ctx, &countries, `SELECT DISTINCT country FROM photos`)
	return countries, err
}

func (r *repository) ListCountryNavigation(ctx context.Context) ([]*Photo, error) {
	query := `
		SELECT ` + photoSelectColumns + ` FROM photos
		WHERE country_featured = $1
		ORDER BY country, id
	`
	return r.list(ctx, query, CountryRepresentative)
}

func (r *repository) ListMarkerHolders(ctx context.Context) ([]*Photo, error) {
	query := `
		SELECT ` + photoSelectColumns + ` FROM photos
		WHERE category_featured = $1 OR country_featured = $2
		ORDER BY id
	`
	return r.list(ctx, query, NavigationPriority, CountryRepresentative)
}

func (r *repository) ListAll(ctx context.Context) ([]*Photo, error) {
	return r.list(ctx, `SELECT `+photoSelectColumns+` FROM photos ORDER BY id`)
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]*Photo, error) {
	var photos []*Photo
	if err := r.q.SelectContext(ctx, &photos, query, args...); err != nil {
		return nil, err
	}
	return photos, nil
}

// constraintColumns maps schema constraint names to the column they guard
var constraintColumns = map[string]Column{
	"photos_filename_key":            ColumnFilename,
	"photos_filename_ext_check":      ColumnFilename,
	"photos_category_check":          ColumnCategory,
	"photos_caption_check":           ColumnCaption,
	"photos_location_check":          ColumnLocation,
	"photos_country_check":           ColumnCountry,
	"photos_date_check":              ColumnDate,
	"photos_homepage_featured_check": ColumnHomepageFeatured,
	"photos_category_featured_check": ColumnCategoryFeatured,
	"photos_country_featured_check":  ColumnCountryFeatured,
	"photos_category_navigation_key": ColumnCategoryFeatured,
	"photos_country_navigation_key":  ColumnCountryFeatured,
}

func mapDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	constraint := strings.ToLower(pqErr.Constraint)
	field := constraintColumns[constraint]
	switch pqErr.Code {
	case "23505":
		switch constraint {
		case "photos_category_navigation_key":
			return newFieldError(0, field, ErrConstraintViolation, "category already has a navigation photo")
		case "photos_country_navigation_key":
			return newFieldError(0, field, ErrConstraintViolation, "country already has a representative photo")
		default:
			return newFieldError(0, field, ErrConstraintViolation, "already exists")
		}
	case "23514":
		return newFieldError(0, field, ErrConstraintViolation, "violates %s", constraint)
	case "23502":
		return newFieldError(0, Column(pqErr.Column), ErrConstraintViolation, "is required")
	default:
		return err
	}
}
