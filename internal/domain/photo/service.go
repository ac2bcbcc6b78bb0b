package photo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
)

// Service handles photo mutations. Every multi-row operation is all-or-nothing.
type Service struct {
	repo   Repository
	assets AssetChecker
}

// NewService creates photo service
func NewService(repo Repository, assets AssetChecker) *Service {
	return &Service{
		repo:   repo,
		assets: assets,
	}
}

// BatchOptions controls a bulk mutation
type BatchOptions struct {
	// DryRun validates everything and reports what would happen without writing
	DryRun bool
}

// RowResult describes what happened (or would happen) to one input row
type RowResult struct {
	Row      int      `json:"row"`
	ID       int64    `json:"id,omitempty"`
	Filename string   `json:"filename"`
	Columns  []Column `json:"columns,omitempty"`
}

// BatchSummary reports a successful (or dry-run) bulk mutation
type BatchSummary struct {
	DryRun   bool          `json:"dry_run"`
	Rows     []RowResult   `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// Count returns the number of rows written, or that would be written
func (s *BatchSummary) Count() int { return len(s.Rows) }

// AddOne validates and inserts a single photo
func (s *Service) AddOne(ctx context.Context, rec Record) (int64, error) {
	summary, err := s.AddBatch(ctx, []Record{rec}, BatchOptions{})
	if err != nil {
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			for _, fe := range batchErr.Errors {
				fe.Row = 0
			}
			return 0, batchErr.Errors
		}
		return 0, err
	}
	return summary.Rows[0].ID, nil
}

// AddBatch validates every record, then inserts all of them in one
// transaction, in input order. Any violation anywhere rejects the whole batch
// with a *BatchError listing every row and field at fault.
func (s *Service) AddBatch(ctx context.Context, recs []Record, opts BatchOptions) (*BatchSummary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidArgument)
	}

	var errs ValidationErrors
	rowErrs := make([]ValidationErrors, len(recs))
	for i, rec := range recs {
		rowErrs[i] = ValidateCreate(rec)
	}

	// filename uniqueness within the batch
	firstRow := make(map[string]int)
	var candidates []string
	for i, rec := range recs {
		name := rec.Value(ColumnFilename)
		if name == "" || hasFieldError(rowErrs[i], ColumnFilename) {
			continue
		}
		if prev, ok := firstRow[name]; ok {
			rowErrs[i] = append(rowErrs[i], newFieldError(0, ColumnFilename, ErrConstraintViolation,
				"duplicates row %d", prev+1))
			continue
		}
		firstRow[name] = i
		candidates = append(candidates, name)
	}

	// filename uniqueness against the store
	existing, err := s.repo.ExistingFilenames(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("check existing filenames: %w", err)
	}
	for _, name := range existing {
		i := firstRow[name]
		rowErrs[i] = append(rowErrs[i], newFieldError(0, ColumnFilename, ErrConstraintViolation, "already exists"))
	}

	// asset existence, only for rows whose key is otherwise sound
	for i, rec := range recs {
		if hasFieldError(rowErrs[i], ColumnFilename) || hasFieldError(rowErrs[i], ColumnCategory) {
			continue
		}
		fe, err := checkAsset(ctx, s.assets, Category(rec.Value(ColumnCategory)), rec.Value(ColumnFilename))
		if err != nil {
			return nil, err
		}
		if fe != nil {
			rowErrs[i] = append(rowErrs[i], fe)
		}
	}

	// one navigation photo per category, one representative per country
	var claims []markerClaim
	for i, rec := range recs {
		if hasMarkerInputError(rowErrs[i]) {
			continue
		}
		claims = append(claims, markerClaim{row: i + 1, photo: rec.Photo()})
	}
	conflicts, err := s.checkMarkers(ctx, claims)
	if err != nil {
		return nil, err
	}
	for _, fe := range conflicts {
		rowErrs[fe.Row-1] = append(rowErrs[fe.Row-1], fe)
	}

	for i := range rowErrs {
		for _, fe := range rowErrs[i] {
			fe.Row = i + 1
			errs = append(errs, fe)
		}
	}
	if len(errs) > 0 {
		log.Warn().Int("rows", len(recs)).Int("errors", len(errs)).Msg("photo batch rejected")
		return nil, &BatchError{Errors: errs}
	}

	photos := make([]*Photo, len(recs))
	for i, rec := range recs {
		photos[i] = rec.Photo()
	}

	summary := &BatchSummary{DryRun: opts.DryRun, Rows: make([]RowResult, len(photos))}
	for i, p := range photos {
		summary.Rows[i] = RowResult{Row: i + 1, Filename: p.Filename}
	}

	if !opts.DryRun {
		err := s.repo.WithinTx(ctx, func(repo Repository) error {
			for i, p := range photos {
				id, err := repo.Insert(ctx, p)
				if err != nil {
					return rowError(i+1, err)
				}
				summary.Rows[i].ID = id
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Int("rows", len(photos)).Msg("photo batch insert rolled back")
			return nil, err
		}
	}

	summary.Duration = time.Since(start)
	log.Info().
		Int("rows", len(photos)).
		Bool("dry_run", opts.DryRun).
		Dur("duration", summary.Duration).
		Msg("photo batch added")

	return summary, nil
}

// UpdateBatch applies partial updates. Each record carries an identifier
// (id, or filename when id is absent) plus only the columns to change. All
// rows are validated before anything is written; one bad row rejects the
// batch.
func (s *Service) UpdateBatch(ctx context.Context, recs []Record, opts BatchOptions) (*BatchSummary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidArgument)
	}

	type pending struct {
		row     int
		current *Photo
		patch   Patch
		next    *Photo
		columns []Column
	}

	var errs ValidationErrors
	var updates []pending
	targetRow := make(map[int64]int)

	for i, rec := range recs {
		row := i + 1
		id, keyCol, fe := identify(rec)
		if fe != nil {
			fe.Row = row
			errs = append(errs, fe)
			continue
		}

		current, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				errs = append(errs, newFieldError(row, keyCol, ErrNotFound, "no photo with %s", id))
				continue
			}
			return nil, fmt.Errorf("row %d: load photo: %w", row, err)
		}

		if prev, ok := targetRow[current.ID]; ok {
			errs = append(errs, newFieldError(row, keyCol, ErrInvalidArgument,
				"photo %d is already updated by row %d", current.ID, prev))
			continue
		}
		targetRow[current.ID] = row

		changes := Record{}
		var rowErrs ValidationErrors
		for c, v := range rec {
			switch {
			case c == ColumnID:
			case c == ColumnFilename:
				if name := rec.Value(c); keyCol == ColumnID && name != current.Filename {
					rowErrs = append(rowErrs, newFieldError(0, c, ErrConstraintViolation, "is immutable"))
				}
			default:
				changes[c] = v
			}
		}
		rowErrs = append(rowErrs, ValidateChanges(changes)...)

		next := changes.Patch()
		if next.Category != nil && *next.Category != current.Category && !hasFieldError(rowErrs, ColumnCategory) {
			fe, err := checkAsset(ctx, s.assets, *next.Category, current.Filename)
			if err != nil {
				return nil, err
			}
			if fe != nil {
				rowErrs = append(rowErrs, fe)
			}
		}

		if len(rowErrs) > 0 {
			for _, fe := range rowErrs {
				fe.Row = row
			}
			errs = append(errs, rowErrs...)
			continue
		}

		updates = append(updates, pending{
			row:     row,
			current: current,
			patch:   next,
			next:    next.Apply(current),
			columns: sortedColumns(changes),
		})
	}

	claims := make([]markerClaim, len(updates))
	for i, u := range updates {
		claims[i] = markerClaim{row: u.row, photo: u.next}
	}
	conflicts, err := s.checkMarkers(ctx, claims)
	if err != nil {
		return nil, err
	}
	errs = append(errs, conflicts...)

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Row < errs[j].Row })
		log.Warn().Int("rows", len(recs)).Int("errors", len(errs)).Msg("photo update batch rejected")
		return nil, &BatchError{Errors: errs}
	}

	summary := &BatchSummary{DryRun: opts.DryRun, Rows: make([]RowResult, len(updates))}
	for i, u := range updates {
		summary.Rows[i] = RowResult{Row: u.row, ID: u.current.ID, Filename: u.current.Filename, Columns: u.columns}
	}

	if !opts.DryRun {
		// rows giving up a marker go first so a marker can move between
		// photos within one batch
		ordered := make([]pending, len(updates))
		copy(ordered, updates)
		sort.SliceStable(ordered, func(i, j int) bool {
			return releasesMarker(ordered[i].current, ordered[i].next) && !releasesMarker(ordered[j].current, ordered[j].next)
		})

		err := s.repo.WithinTx(ctx, func(repo Repository) error {
			for _, u := range ordered {
				if _, err := repo.UpdatePartial(ctx, ByID(u.current.ID), u.patch); err != nil {
					return rowError(u.row, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Int("rows", len(updates)).Msg("photo update batch rolled back")
			return nil, err
		}
	}

	summary.Duration = time.Since(start)
	log.Info().
		Int("rows", len(updates)).
		Bool("dry_run", opts.DryRun).
		Dur("duration", summary.Duration).
		Msg("photo batch updated")

	return summary, nil
}

// markerClaim is one row's photo as it would be stored. New photos have
// no ID yet.
type markerClaim struct {
	row   int
	photo *Photo
}

// checkMarkers reports every row that would give a category a second
// navigation photo or a country a second representative, counting both the
// store and earlier rows of the batch. A stored photo that the batch itself
// rewrites is judged by its new state only.
func (s *Service) checkMarkers(ctx context.Context, claims []markerClaim) (ValidationErrors, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	holders, err := s.repo.ListMarkerHolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load navigation photos: %w", err)
	}

	rewritten := make(map[int64]bool, len(claims))
	for _, c := range claims {
		if c.photo.ID > 0 {
			rewritten[c.photo.ID] = true
		}
	}
	navHolder := make(map[Category]int64)
	repHolder := make(map[string]int64)
	for _, h := range holders {
		if rewritten[h.ID] {
			continue
		}
		if h.IsCategoryNavigation() {
			navHolder[h.Category] = h.ID
		}
		if h.IsCountryRepresentative() {
			repHolder[h.Country] = h.ID
		}
	}

	var errs ValidationErrors
	navRow := make(map[Category]int)
	repRow := make(map[string]int)
	for _, c := range claims {
		p := c.photo
		if p.IsCategoryNavigation() {
			if id, ok := navHolder[p.Category]; ok {
				errs = append(errs, newFieldError(c.row, ColumnCategoryFeatured, ErrConstraintViolation,
					"category already has a navigation photo (id %d)", id))
			} else if prev, ok := navRow[p.Category]; ok {
				errs = append(errs, newFieldError(c.row, ColumnCategoryFeatured, ErrConstraintViolation,
					"category navigation photo already set by row %d", prev))
			} else {
				navRow[p.Category] = c.row
			}
		}
		if p.IsCountryRepresentative() {
			if id, ok := repHolder[p.Country]; ok {
				errs = append(errs, newFieldError(c.row, ColumnCountryFeatured, ErrConstraintViolation,
					"country already has a representative photo (id %d)", id))
			} else if prev, ok := repRow[p.Country]; ok {
				errs = append(errs, newFieldError(c.row, ColumnCountryFeatured, ErrConstraintViolation,
					"country representative photo already set by row %d", prev))
			} else {
				repRow[p.Country] = c.row
			}
		}
	}
	return errs, nil
}

// releasesMarker reports whether an update takes a navigation or
// representative marker away from the photo
func releasesMarker(current, next *Photo) bool {
	return (current.IsCategoryNavigation() && (!next.IsCategoryNavigation() || next.Category != current.Category)) ||
		(current.IsCountryRepresentative() && (!next.IsCountryRepresentative() || next.Country != current.Country))
}

func hasMarkerInputError(errs ValidationErrors) bool {
	for _, c := range []Column{ColumnCategory, ColumnCountry, ColumnCategoryFeatured, ColumnCountryFeatured} {
		if hasFieldError(errs, c) {
			return true
		}
	}
	return false
}

// identify picks the row's key: id when supplied, filename otherwise
func identify(rec Record) (Identifier, Column, *FieldError) {
	if v, ok := rec.Get(ColumnID); ok && v != "" {
		id, valid := parseID(v)
		if !valid {
			return Identifier{}, ColumnID, newFieldError(0, ColumnID, ErrInvalidArgument, "must be a positive integer")
		}
		return ByID(id), ColumnID, nil
	}
	if name := rec.Value(ColumnFilename); name != "" {
		return ByFilename(name), ColumnFilename, nil
	}
	return Identifier{}, ColumnID, newFieldError(0, ColumnID, ErrInvalidArgument, "id or filename is required")
}

// rowError tags a store failure with its input row. Constraint failures
// become a rejected batch so callers see one error shape.
func rowError(row int, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		fe.Row = row
		return &BatchError{Errors: ValidationErrors{fe}}
	}
	return fmt.Errorf("row %d: %w", row, err)
}

func hasFieldError(errs ValidationErrors, c Column) bool {
	for _, fe := range errs {
		if fe.Field == c {
			return true
		}
	}
	return false
}

func sortedColumns(rec Record) []Column {
	var cols []Column
	for _, c := range WritableColumns {
		if _, ok := rec[c]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}
