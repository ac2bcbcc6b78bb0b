package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/shanejorr-team/personal-blog/internal/domain/photo"
	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
)

// probeConcurrency bounds parallel asset downloads while warming views
const probeConcurrency = 4

// ErrSlugConflict is returned when a country cannot be given its own page file
var ErrSlugConflict = errors.New("country slug conflict")

// Site is every page of the portfolio
type Site struct {
	Homepage   *Homepage                        `json:"homepage"`
	Navigation *Navigation                      `json:"navigation"`
	Categories map[photo.Category]*CategoryPage `json:"categories"`
	Countries  []*CountryPage                   `json:"countries"`
}

// Build assembles every page. Photos are probed concurrently up front so the
// page assembly that follows hits the memoized views.
func (a *Assembler) Build(ctx context.Context, all []*photo.Photo) (*Site, error) {
	log := logger.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, p := range all {
		p := p
		g.Go(func() error {
			_, err := a.View(gctx, p)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("warm views: %w", err)
	}

	site := &Site{Categories: make(map[photo.Category]*CategoryPage, len(photo.Categories))}

	var err error
	if site.Homepage, err = a.Homepage(ctx); err != nil {
		return nil, err
	}
	if site.Navigation, err = a.Navigation(ctx); err != nil {
		return nil, err
	}
	for _, c := range photo.Categories {
		page, err := a.Category(ctx, string(c))
		if err != nil {
			return nil, err
		}
		site.Categories[c] = page
	}
	for _, link := range site.Navigation.Countries {
		page, err := a.Country(ctx, link.Name)
		if err != nil {
			return nil, err
		}
		site.Countries = append(site.Countries, page)
	}
	if err := site.checkSlugs(); err != nil {
		return nil, err
	}

	log.Info().
		Int("photos", len(all)).
		Int("countries", len(site.Countries)).
		Msg("site assembled")
	return site, nil
}

// Write lays the site out as JSON documents under dir:
//
//	homepage.json
//	navigation.json
//	categories/{category}.json
//	countries/{slug}.json
func (s *Site) Write(dir string) error {
	if err := s.checkSlugs(); err != nil {
		return err
	}

	files := map[string]interface{}{
		"homepage.json":   s.Homepage,
		"navigation.json": s.Navigation,
	}
	for c, page := range s.Categories {
		files[filepath.Join("categories", string(c)+".json")] = page
	}
	for _, page := range s.Countries {
		files[filepath.Join("countries", page.Slug+".json")] = page
	}

	for name, doc := range files {
		if err := writeJSON(filepath.Join(dir, name), doc); err != nil {
			return err
		}
	}
	return nil
}

// checkSlugs makes sure every country page lands in a file of its own
func (s *Site) checkSlugs() error {
	owner := make(map[string]string, len(s.Countries))
	for _, page := range s.Countries {
		if page.Slug == "" {
			return fmt.Errorf("%w: %q has no usable characters", ErrSlugConflict, page.Country)
		}
		if prev, ok := owner[page.Slug]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrSlugConflict, prev, page.Country, page.Slug)
		}
		owner[page.Slug] = page.Country
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
