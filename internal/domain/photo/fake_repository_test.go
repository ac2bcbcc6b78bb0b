package photo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// fakeRepository keeps photos in memory and enforces the same uniqueness
// rules the schema does.
type fakeRepository struct {
	mu     sync.Mutex
	photos map[int64]*Photo
	nextID int64
	clock  time.Time

	failInsertAt int // 1-based insert call that fails; 0 never
	inserts      int
}

func newFakeRepository(photos ...*Photo) *fakeRepository {
	r := &fakeRepository{
		photos: make(map[int64]*Photo),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, p := range photos {
		r.nextID++
		cp := *p
		cp.ID = r.nextID
		cp.CreatedAt, cp.UpdatedAt = r.tick(), r.now()
		r.photos[cp.ID] = &cp
	}
	return r
}

func (r *fakeRepository) now() time.Time { return r.clock }

func (r *fakeRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.photos)
}

func (r *fakeRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[int64]*Photo, len(r.photos))
	for id, p := range r.photos {
		cp := *p
		snapshot[id] = &cp
	}
	nextID := r.nextID
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.photos, r.nextID = snapshot, nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *fakeRepository) checkUnique(p *Photo) error {
	for _, other := range r.photos {
		if other.ID == p.ID {
			continue
		}
		if other.Filename == p.Filename {
			return newFieldError(0, ColumnFilename, ErrConstraintViolation, "already exists")
		}
		if p.IsCategoryNavigation() && other.IsCategoryNavigation() && other.Category == p.Category {
			return newFieldError(0, ColumnCategoryFeatured, ErrConstraintViolation, "category already has a navigation photo")
		}
		if p.IsCountryRepresentative() && other.IsCountryRepresentative() && other.Country == p.Country {
			return newFieldError(0, ColumnCountryFeatured, ErrConstraintViolation, "country already has a representative photo")
		}
	}
	return nil
}

func (r *fakeRepository) Insert(ctx context.Context, p *Photo) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inserts++
	if r.failInsertAt > 0 && r.inserts == r.failInsertAt {
		return 0, fmt.Errorf("connection reset")
	}
	if err := r.checkUnique(p); err != nil {
		return 0, err
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = r.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.photos[p.ID] = &cp
	return p.ID, nil
}

func (r *fakeRepository) find(id Identifier) *Photo {
	if id.ID > 0 {
		return r.photos[id.ID]
	}
	for _, p := range r.photos {
		if p.Filename == id.Filename {
			return p
		}
	}
	return nil
}

func (r *fakeRepository) UpdatePartial(ctx context.Context, id Identifier, patch Patch) (*Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.find(id)
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := patch.Apply(current)
	if err := r.checkUnique(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = r.tick()
	r.photos[next.ID] = next
	cp := *next
	return &cp, nil
}

func (r *fakeRepository) Get(ctx context.Context, id Identifier) (*Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepository) ExistingFilenames(ctx context.Context, filenames []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, name := range filenames {
		if r.find(ByFilename(name)) != nil {
			out = append(out, name)
		}
	}
	return out, nil
}

func (r *fakeRepository) filter(keep func(*Photo) bool, less func(a, b *Photo) bool) []*Photo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Photo
	for _, p := range r.photos {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(a, b *Photo) bool { return a.ID < b.ID }

func chronological(a, b *Photo) bool {
	switch {
	case a.Date == nil && b.Date == nil:
		return a.ID < b.ID
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	case *a.Date != *b.Date:
		return *a.Date > *b.Date
	}
	return a.ID < b.ID
}

func (r *fakeRepository) ListHomepageFeatured(ctx context.Context, limit int) ([]*Photo, error) {
	out := r.filter(func(p *Photo) bool { return p.HomepageFeatured != nil }, func(a, b *Photo) bool {
		if *a.HomepageFeatured != *b.HomepageFeatured {
			return *a.HomepageFeatured < *b.HomepageFeatured
		}
		return a.ID < b.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepository) GetCategoryNavigation(ctx context.Context, category Category) (*Photo, error) {
	out := r.filter(func(p *Photo) bool { return p.Category == category && p.IsCategoryNavigation() }, byID)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fakeRepository) ListCategoryFeatured(ctx context.Context, category Category) ([]*Photo, error) {
	return r.filter(func(p *Photo) bool {
		return p.Category == category && p.CategoryFeatured != nil && *p.CategoryFeatured > NavigationPriority
	}, func(a, b *Photo) bool {
		if *a.CategoryFeatured != *b.CategoryFeatured {
			return *a.CategoryFeatured < *b.CategoryFeatured
		}
		return a.ID < b.ID
	}), nil
}

func (r *fakeRepository) ListByCategory(ctx context.Context, category Category) ([]*Photo, error) {
	return r.filter(func(p *Photo) bool { return p.Category == category }, chronological), nil
}

func (r *fakeRepository) ListByCountry(ctx context.Context, country string) ([]*Photo, error) {
	return r.filter(func(p *Photo) bool { return p.Country == country }, chronological), nil
}

func (r *fakeRepository) ListCountries(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.filter(func(*Photo) bool { return true }, byID) {
		if !seen[p.Country] {
			seen[p.Country] = true
			out = append(out, p.Country)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListCountryNavigation(ctx context.Context) ([]*Photo, error) {
	return r.filter(func(p *Photo) bool { return p.IsCountryRepresentative() }, byID), nil
}

func (r *fakeRepository) ListMarkerHolders(ctx context.Context) ([]*Photo, error) {
	return r.filter(func(p *Photo) bool { return p.IsCategoryNavigation() || p.IsCountryRepresentative() }, byID), nil
}

func (r *fakeRepository) ListAll(ctx context.Context) ([]*Photo, error) {
	return r.filter(func(*Photo) bool { return true }, byID), nil
}

// fakeAssets reports a key as present when it is in the set
type fakeAssets struct {
	keys map[string]bool
	err  error
}

func newFakeAssets(keys ...string) *fakeAssets {
	a := &fakeAssets{keys: make(map[string]bool)}
	for _, k := range keys {
		a.keys[k] = true
	}
	return a
}

func (a *fakeAssets) Exists(ctx context.Context, key string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.keys[key], nil
}

func ptr[T any](v T) *T { return &v }

func samplePhoto(filename string, category Category, country, location, caption string) *Photo {
	return &Photo{
		Filename: filename,
		Category: category,
		Caption:  caption,
		Location: location,
		Country:  country,
	}
}
