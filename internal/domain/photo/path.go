package photo

import (
	"fmt"
	"strings"
)

// AssetKey is the asset-store key of a photo file: "{category}/{filename}".
// Every path or existence check goes through it.
func AssetKey(category Category, filename string) string {
	return string(category) + "/" + filename
}

// AssetKey returns the photo's key in the asset store
func (p *Photo) AssetKey() string {
	return AssetKey(p.Category, p.Filename)
}

// Path returns "{assetRoot}/{category}/{filename}"
func (p *Photo) Path(assetRoot string) string {
	return strings.TrimSuffix(assetRoot, "/") + "/" + p.AssetKey()
}

// Alt returns the generated accessibility text "{country}, {location} - {caption}"
func (p *Photo) Alt() string {
	return fmt.Sprintf("%s, %s - %s", p.Country, p.Location, p.Caption)
}
