package gallery

import "github.com/shanejorr-team/personal-blog/internal/domain/photo"

// Variant is a resized copy of a photo for srcset
type Variant struct {
	Width int    `json:"width"`
	Src   string `json:"src"`
}

// PhotoView is what a page template needs to render one photo
type PhotoView struct {
	ID          int64          `json:"id"`
	Filename    string         `json:"filename"`
	Category    photo.Category `json:"category"`
	Caption     string         `json:"caption"`
	Location    string         `json:"location"`
	Country     string         `json:"country"`
	CountrySlug string         `json:"country_slug"`
	SubCategory *string        `json:"sub_category,omitempty"`
	Date        *string        `json:"date,omitempty"`
	Src         string         `json:"src"`
	URL         string         `json:"url"` // where the asset backend serves the original
	Alt         string         `json:"alt"`
	Width       int            `json:"width,omitempty"`
	Height      int            `json:"height,omitempty"`
	AspectRatio float64        `json:"aspect_ratio,omitempty"`
	Variants    []Variant      `json:"variants,omitempty"`
}

// GroupView is a titled section of photos
type GroupView struct {
	Name   string      `json:"name"`
	Photos []PhotoView `json:"photos"`
}

// Homepage is the ranked featured list split into slot 1 (hero) and the grid
type Homepage struct {
	Hero *PhotoView  `json:"hero,omitempty"`
	Grid []PhotoView `json:"grid"`
}

// CategoryPage is one category's overview and full listing
type CategoryPage struct {
	Category   photo.Category `json:"category"`
	Navigation *PhotoView     `json:"navigation,omitempty"`
	Featured   []PhotoView    `json:"featured"`
	Groups     []GroupView    `json:"groups"`
}

// CountryPage lists a country's photos by location
type CountryPage struct {
	Country string      `json:"country"`
	Slug    string      `json:"slug"`
	Groups  []GroupView `json:"groups"`
}

// NavLink is one entry in the site menu. Photo is nil when nothing is marked
// to represent the entry.
type NavLink struct {
	Name  string     `json:"name"`
	Slug  string     `json:"slug"`
	Photo *PhotoView `json:"photo,omitempty"`
}

// Navigation is the site menu
type Navigation struct {
	Categories []NavLink `json:"categories"`
	Countries  []NavLink `json:"countries"`
}
