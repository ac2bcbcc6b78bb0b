package photo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shanejorr-team/personal-blog/internal/pkg/validator"
)

// columnRules maps each writable column to its validator tags. Required
// columns reject empty values; the rest treat empty as absent.
var columnRules = map[Column]string{
	ColumnFilename:         "required,max=255,image_ext",
	ColumnCategory:         "required,photo_category",
	ColumnCaption:          "required",
	ColumnLocation:         "required",
	ColumnCountry:          "required",
	ColumnSubCategory:      "omitempty,max=100",
	ColumnDate:             "omitempty,iso_date",
	ColumnHomepageFeatured: fmt.Sprintf("omitempty,int_range=%d:%d", MinHomepagePriority, MaxHomepagePriority),
	ColumnCategoryFeatured: fmt.Sprintf("omitempty,int_range=%d:%d", NavigationPriority, MaxCategoryPriority),
	ColumnCountryFeatured:  fmt.Sprintf("omitempty,int_range=0:%d", CountryRepresentative),
}

func init() {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	validator.SetCategories(names)
}

// AssetChecker answers whether a file exists under an asset key
type AssetChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// ValidateCreate checks a new record against every column rule and reports
// all violations, not just the first.
func ValidateCreate(rec Record) ValidationErrors {
	errs := unknownColumns(rec)
	if _, ok := rec[ColumnID]; ok {
		errs = append(errs, newFieldError(0, ColumnID, ErrInvalidArgument, "is system-assigned"))
	}
	for _, c := range WritableColumns {
		if fe := validateColumn(c, rec.Value(c)); fe != nil {
			errs = append(errs, fe)
		}
	}
	return errs
}

// ValidateChanges checks only the columns present in rec. The identifier
// columns are the caller's concern.
func ValidateChanges(rec Record) ValidationErrors {
	errs := unknownColumns(rec)
	for _, c := range WritableColumns {
		v, ok := rec.Get(c)
		if !ok {
			continue
		}
		if fe := validateColumn(c, v); fe != nil {
			errs = append(errs, fe)
		}
	}
	return errs
}

func validateColumn(c Column, value string) *FieldError {
	if err := validator.ValidateVar(value, columnRules[c]); err != nil {
		return newFieldError(0, c, ErrConstraintViolation, "%s", err.Error())
	}
	return nil
}

func unknownColumns(rec Record) ValidationErrors {
	var errs ValidationErrors
	for c := range rec {
		if c != ColumnID && !c.Writable() {
			errs = append(errs, newFieldError(0, c, ErrInvalidArgument, "unknown column"))
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// checkAsset reports a missing file as a field error. Lookup failures are
// returned as plain errors so callers can abort instead of blaming the row.
func checkAsset(ctx context.Context, assets AssetChecker, category Category, filename string) (*FieldError, error) {
	key := AssetKey(category, filename)
	ok, err := assets.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check asset %s: %w", key, err)
	}
	if !ok {
		return newFieldError(0, ColumnFilename, ErrAssetMissing, "no file at %s", key), nil
	}
	return nil, nil
}

func parseID(v string) (int64, bool) {
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil && id > 0
}
