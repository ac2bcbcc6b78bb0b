package photo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// OtherGroup collects photos without a sub-category. It always sorts last.
const OtherGroup = "Other"

// Group is a named, ordered run of photos on a page
type Group struct {
	Name   string   `json:"name"`
	Photos []*Photo `json:"photos"`
}

// Queries answers the read-only questions the generated pages ask
type Queries struct {
	repo  Repository
	slots int
}

// NewQueries creates the query layer. slots caps the homepage list.
func NewQueries(repo Repository, slots int) *Queries {
	if slots <= 0 || slots > MaxHomepagePriority {
		slots = MaxHomepagePriority
	}
	return &Queries{repo: repo, slots: slots}
}

// HomepageFeatured returns photos with a homepage priority, ascending, ties
// by id, capped at the configured slot count.
func (q *Queries) HomepageFeatured(ctx context.Context) ([]*Photo, error) {
	return q.repo.ListHomepageFeatured(ctx, q.slots)
}

// CategoryNavigationPhoto returns the category's navigation photo, or nil
// when none is marked.
func (q *Queries) CategoryNavigationPhoto(ctx context.Context, category string) (*Photo, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return q.repo.GetCategoryNavigation(ctx, c)
}

// CategoryFeatured returns the category's overview photos by ascending
// priority (1 first). The navigation photo is not included.
func (q *Queries) CategoryFeatured(ctx context.Context, category string) ([]*Photo, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return q.repo.ListCategoryFeatured(ctx, c)
}

// AllCategoryPhotos groups every photo of a category by sub-category.
// Groups are alphabetical with OtherGroup last; photos keep store order.
func (q *Queries) AllCategoryPhotos(ctx context.Context, category string) ([]Group, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	photos, err := q.repo.ListByCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	return groupBy(photos, func(p *Photo) string {
		if p.SubCategory == nil || strings.TrimSpace(*p.SubCategory) == "" {
			return OtherGroup
		}
		return *p.SubCategory
	}), nil
}

// CountryPhotos groups a country's photos by location, alphabetically
func (q *Queries) CountryPhotos(ctx context.Context, country string) ([]Group, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, fmt.Errorf("%w: country is required", ErrInvalidArgument)
	}
	photos, err := q.repo.ListByCountry(ctx, country)
	if err != nil {
		return nil, err
	}
	return groupBy(photos, func(p *Photo) string { return p.Location }), nil
}

// AllCountries returns the distinct countries that have photos, sorted
func (q *Queries) AllCountries(ctx context.Context) ([]string, error) {
	countries, err := q.repo.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	col := newCollator()
	sort.SliceStable(countries, func(i, j int) bool {
		return col.CompareString(countries[i], countries[j]) < 0
	})
	return countries, nil
}

// CountryNavigationPhotos returns each country's representative photo,
// ordered by country.
func (q *Queries) CountryNavigationPhotos(ctx context.Context) ([]*Photo, error) {
	photos, err := q.repo.ListCountryNavigation(ctx)
	if err != nil {
		return nil, err
	}
	col := newCollator()
	sort.SliceStable(photos, func(i, j int) bool {
		return col.CompareString(photos[i].Country, photos[j].Country) < 0
	})
	return photos, nil
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func groupBy(photos []*Photo, key func(*Photo) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, p := range photos {
		name := key(p)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Photos = append(groups[i].Photos, p)
	}

	col := newCollator()
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Name, groups[j].Name
		if (a == OtherGroup) != (b == OtherGroup) {
			return b == OtherGroup
		}
		if c := col.CompareString(a, b); c != 0 {
			return c < 0
		}
		return a < b
	})
	return groups
}
