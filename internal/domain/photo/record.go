package photo

import (
	"database/sql"
	"strconv"
	"strings"
)

// Column names a photo field as it appears in the store and in CSV files
type Column string

const (
	ColumnID               Column = "id"
	ColumnFilename         Column = "filename"
	ColumnCategory         Column = "category"
	ColumnCaption          Column = "caption"
	ColumnLocation         Column = "location"
	ColumnCountry          Column = "country"
	ColumnSubCategory      Column = "sub_category"
	ColumnDate             Column = "date"
	ColumnHomepageFeatured Column = "homepage_featured"
	ColumnCategoryFeatured Column = "category_featured"
	ColumnCountryFeatured  Column = "country_featured"
)

// WritableColumns in canonical order. id and the timestamps are system-assigned.
var WritableColumns = []Column{
	ColumnFilename,
	ColumnCategory,
	ColumnCaption,
	ColumnLocation,
	ColumnCountry,
	ColumnSubCategory,
	ColumnDate,
	ColumnHomepageFeatured,
	ColumnCategoryFeatured,
	ColumnCountryFeatured,
}

// RequiredColumns must be present with a non-empty value on create
var RequiredColumns = []Column{
	ColumnFilename,
	ColumnCategory,
	ColumnCaption,
	ColumnLocation,
	ColumnCountry,
}

// Writable reports whether c can be supplied by callers
func (c Column) Writable() bool {
	for _, w := range WritableColumns {
		if c == w {
			return true
		}
	}
	return false
}

// Required reports whether c may never be empty
func (c Column) Required() bool {
	for _, r := range RequiredColumns {
		if c == r {
			return true
		}
	}
	return false
}

// Record is one row of raw caller input keyed by column. An empty value in a
// nullable column means NULL.
type Record map[Column]string

// Get returns the trimmed value of c and whether it was supplied at all
func (r Record) Get(c Column) (string, bool) {
	v, ok := r[c]
	return strings.TrimSpace(v), ok
}

// Value returns the trimmed value of c, or "" when absent
func (r Record) Value(c Column) string {
	v, _ := r.Get(c)
	return v
}

// Photo builds a new photo from a validated create record
func (r Record) Photo() *Photo {
	return &Photo{
		Filename:         r.Value(ColumnFilename),
		Category:         Category(r.Value(ColumnCategory)),
		Caption:          r.Value(ColumnCaption),
		Location:         r.Value(ColumnLocation),
		Country:          r.Value(ColumnCountry),
		SubCategory:      optionalString(r.Value(ColumnSubCategory)),
		Date:             optionalString(r.Value(ColumnDate)),
		HomepageFeatured: optionalInt(r.Value(ColumnHomepageFeatured)),
		CategoryFeatured: optionalInt(r.Value(ColumnCategoryFeatured)),
		CountryFeatured:  optionalInt(r.Value(ColumnCountryFeatured)),
	}
}

// Patch builds a partial update from a validated update record. Only the
// columns present in r are set.
func (r Record) Patch() Patch {
	var p Patch
	for c := range r {
		v := r.Value(c)
		switch c {
		case ColumnCategory:
			cat := Category(v)
			p.Category = &cat
		case ColumnCaption:
			p.Caption = &v
		case ColumnLocation:
			p.Location = &v
		case ColumnCountry:
			p.Country = &v
		case ColumnSubCategory:
			p.SubCategory = nullString(v)
		case ColumnDate:
			p.Date = nullString(v)
		case ColumnHomepageFeatured:
			p.HomepageFeatured = nullInt(v)
		case ColumnCategoryFeatured:
			p.CategoryFeatured = nullInt(v)
		case ColumnCountryFeatured:
			p.CountryFeatured = nullInt(v)
		}
	}
	return p
}

// Record renders p with every writable column plus id, for export
func (p *Photo) Record() Record {
	return Record{
		ColumnID:               strconv.FormatInt(p.ID, 10),
		ColumnFilename:         p.Filename,
		ColumnCategory:         string(p.Category),
		ColumnCaption:          p.Caption,
		ColumnLocation:         p.Location,
		ColumnCountry:          p.Country,
		ColumnSubCategory:      derefString(p.SubCategory),
		ColumnDate:             derefString(p.Date),
		ColumnHomepageFeatured: derefInt(p.HomepageFeatured),
		ColumnCategoryFeatured: derefInt(p.CategoryFeatured),
		ColumnCountryFeatured:  derefInt(p.CountryFeatured),
	}
}

// Patch is a partial update. A nil field is left unchanged; a Null* field with
// Valid=false clears the column. Filename is immutable and has no field here.
type Patch struct {
	Category         *Category
	Caption          *string
	Location         *string
	Country          *string
	SubCategory      *sql.NullString
	Date             *sql.NullString
	HomepageFeatured *sql.NullInt64
	CategoryFeatured *sql.NullInt64
	CountryFeatured  *sql.NullInt64
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Category == nil && p.Caption == nil && p.Location == nil && p.Country == nil &&
		p.SubCategory == nil && p.Date == nil &&
		p.HomepageFeatured == nil && p.CategoryFeatured == nil && p.CountryFeatured == nil
}

// Apply returns a copy of photo with the patch applied
func (p Patch) Apply(photo *Photo) *Photo {
	out := *photo
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Caption != nil {
		out.Caption = *p.Caption
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	if p.SubCategory != nil {
		out.SubCategory = fromNullString(*p.SubCategory)
	}
	if p.Date != nil {
		out.Date = fromNullString(*p.Date)
	}
	if p.HomepageFeatured != nil {
		out.HomepageFeatured = fromNullInt(*p.HomepageFeatured)
	}
	if p.CategoryFeatured != nil {
		out.CategoryFeatured = fromNullInt(*p.CategoryFeatured)
	}
	if p.CountryFeatured != nil {
		out.CountryFeatured = fromNullInt(*p.CountryFeatured)
	}
	return &out
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func nullString(v string) *sql.NullString {
	return &sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v string) *sql.NullInt64 {
	if v == "" {
		return &sql.NullInt64{}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return &sql.NullInt64{Int64: n, Valid: err == nil}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
