package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shanejorr-team/personal-blog/internal/domain/photo"
	"github.com/shanejorr-team/personal-blog/internal/pkg/cache"
	"github.com/shanejorr-team/personal-blog/internal/pkg/imaging"
	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
	"github.com/shanejorr-team/personal-blog/internal/pkg/storage"
)

// PhotoQueries is the read side the assembler renders from
type PhotoQueries interface {
	HomepageFeatured(ctx context.Context) ([]*photo.Photo, error)
	CategoryNavigationPhoto(ctx context.Context, category string) (*photo.Photo, error)
	CategoryFeatured(ctx context.Context, category string) ([]*photo.Photo, error)
	AllCategoryPhotos(ctx context.Context, category string) ([]photo.Group, error)
	CountryPhotos(ctx context.Context, country string) ([]photo.Group, error)
	AllCountries(ctx context.Context) ([]string, error)
	CountryNavigationPhotos(ctx context.Context) ([]*photo.Photo, error)
}

// Options configures how views reference assets
type Options struct {
	AssetRoot     string
	VariantWidths []int
}

// Assembler turns query results into page views. Views are memoized by photo
// id, so use one Assembler per build.
type Assembler struct {
	queries   PhotoQueries
	assets    storage.Store
	dims      cache.DimensionCache
	assetRoot string
	widths    []int

	mu    sync.Mutex
	views map[int64]PhotoView
}

// NewAssembler creates a view assembler
func NewAssembler(queries PhotoQueries, assets storage.Store, dims cache.DimensionCache, opts Options) *Assembler {
	if dims == nil {
		dims = cache.NewMemory()
	}
	return &Assembler{
		queries:   queries,
		assets:    assets,
		dims:      dims,
		assetRoot: strings.TrimSuffix(opts.AssetRoot, "/"),
		widths:    opts.VariantWidths,
		views:     make(map[int64]PhotoView),
	}
}

// Homepage assembles the homepage
func (a *Assembler) Homepage(ctx context.Context) (*Homepage, error) {
	photos, err := a.queries.HomepageFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("homepage featured: %w", err)
	}
	views, err := a.viewsOf(ctx, photos)
	if err != nil {
		return nil, err
	}
	home := &Homepage{Grid: []PhotoView{}}
	if len(views) > 0 {
		home.Hero = &views[0]
		home.Grid = views[1:]
	}
	return home, nil
}

// Category assembles one category page
func (a *Assembler) Category(ctx context.Context, category string) (*CategoryPage, error) {
	c, err := photo.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	page := &CategoryPage{Category: c}

	nav, err := a.queries.CategoryNavigationPhoto(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category navigation: %w", err)
	}
	if nav != nil {
		v, err := a.View(ctx, nav)
		if err != nil {
			return nil, err
		}
		page.Navigation = &v
	}

	featured, err := a.queries.CategoryFeatured(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category featured: %w", err)
	}
	if page.Featured, err = a.viewsOf(ctx, featured); err != nil {
		return nil, err
	}

	groups, err := a.queries.AllCategoryPhotos(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category photos: %w", err)
	}
	if page.Groups, err = a.groupsOf(ctx, groups); err != nil {
		return nil, err
	}
	return page, nil
}

// Country assembles one country page
func (a *Assembler) Country(ctx context.Context, country string) (*CountryPage, error) {
	groups, err := a.queries.CountryPhotos(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("country photos: %w", err)
	}
	views, err := a.groupsOf(ctx, groups)
	if err != nil {
		return nil, err
	}
	return &CountryPage{Country: country, Slug: Slug(country), Groups: views}, nil
}

// Navigation assembles the site menu: every category with its navigation
// photo, and every country with its representative photo when one is marked.
func (a *Assembler) Navigation(ctx context.Context) (*Navigation, error) {
	nav := &Navigation{}

	for _, c := range photo.Categories {
		link := NavLink{Name: string(c), Slug: string(c)}
		p, err := a.queries.CategoryNavigationPhoto(ctx, string(c))
		if err != nil {
			return nil, fmt.Errorf("navigation %s: %w", c, err)
		}
		if p != nil {
			v, err := a.View(ctx, p)
			if err != nil {
				return nil, err
			}
			link.Photo = &v
		}
		nav.Categories = append(nav.Categories, link)
	}

	countries, err := a.queries.AllCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	reps, err := a.queries.CountryNavigationPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("country navigation: %w", err)
	}
	byCountry := make(map[string]*photo.Photo, len(reps))
	for _, p := range reps {
		byCountry[p.Country] = p
	}

	for _, country := range countries {
		link := NavLink{Name: country, Slug: Slug(country)}
		if p, ok := byCountry[country]; ok {
			v, err := a.View(ctx, p)
			if err != nil {
				return nil, err
			}
			link.Photo = &v
		}
		nav.Countries = append(nav.Countries, link)
	}
	return nav, nil
}

// View renders one photo: derived path and alt text, plus dimensions and
// resized variants when the asset can be read.
func (a *Assembler) View(ctx context.Context, p *photo.Photo) (PhotoView, error) {
	a.mu.Lock()
	v, ok := a.views[p.ID]
	a.mu.Unlock()
	ok = ok && p.ID != 0
	if ok {
		return v, nil
	}

	v = PhotoView{
		ID:          p.ID,
		Filename:    p.Filename,
		Category:    p.Category,
		Caption:     p.Caption,
		Location:    p.Location,
		Country:     p.Country,
		CountrySlug: Slug(p.Country),
		SubCategory: p.SubCategory,
		Date:        p.Date,
		Src:         p.Path(a.assetRoot),
		Alt:         p.Alt(),
	}

	key := p.AssetKey()
	v.URL = a.assets.URL(key)
	dims, err := a.dimensions(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.FromContext(ctx).Warn().Str("key", key).Msg("asset missing, rendering without dimensions")
	case err != nil:
		return PhotoView{}, err
	default:
		v.Width, v.Height, v.AspectRatio = dims.Width, dims.Height, dims.AspectRatio()
		if v.Variants, err = a.variants(ctx, key, dims); err != nil {
			return PhotoView{}, err
		}
	}

	if p.ID != 0 {
		a.mu.Lock()
		a.views[p.ID] = v
		a.mu.Unlock()
	}
	return v, nil
}

func (a *Assembler) dimensions(ctx context.Context, key string) (imaging.Dimensions, error) {
	dims, ok, err := a.dims.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("dimension cache read failed")
	}
	if ok {
		return dims, nil
	}

	r, err := a.assets.Open(ctx, key)
	if err != nil {
		return imaging.Dimensions{}, err
	}
	defer r.Close()

	dims, err = imaging.Probe(r)
	if err != nil {
		return imaging.Dimensions{}, fmt.Errorf("probe %s: %w", key, err)
	}
	if err := a.dims.Set(ctx, key, dims); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("dimension cache write failed")
	}
	return dims, nil
}

// variants lists the published resized copies that exist in the store
func (a *Assembler) variants(ctx context.Context, key string, dims imaging.Dimensions) ([]Variant, error) {
	var out []Variant
	for _, w := range imaging.VariantWidths(dims, a.widths) {
		vk := imaging.VariantKey(key, w)
		ok, err := a.assets.Exists(ctx, vk)
		if err != nil {
			return nil, fmt.Errorf("check variant %s: %w", vk, err)
		}
		if ok {
			out = append(out, Variant{Width: w, Src: a.assetRoot + "/" + vk})
		}
	}
	return out, nil
}

func (a *Assembler) viewsOf(ctx context.Context, photos []*photo.Photo) ([]PhotoView, error) {
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		v, err := a.View(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (a *Assembler) groupsOf(ctx context.Context, groups []photo.Group) ([]GroupView, error) {
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views, err := a.viewsOf(ctx, g.Photos)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupView{Name: g.Name, Photos: views})
	}
	return out, nil
}
