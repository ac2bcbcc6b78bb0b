package photo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoto_PathAndAlt(t *testing.T) {
	p := samplePhoto("sunset.jpg", CategoryNature, "Turkey", "Cappadocia", "Balloons at dawn")

	assert.Equal(t, "nature/sunset.jpg", p.AssetKey())
	assert.Equal(t, "/images/portfolio/nature/sunset.jpg", p.Path("/images/portfolio"))
	assert.Equal(t, "/images/portfolio/nature/sunset.jpg", p.Path("/images/portfolio/"))
	assert.Equal(t, "Turkey, Cappadocia - Balloons at dawn", p.Alt())
}

func TestPhoto_PathFollowsCategory(t *testing.T) {
	p := samplePhoto("crowd.png", CategoryConcert, "USA", "Austin", "Encore")
	assert.Equal(t, "concert/crowd.png", p.AssetKey())

	p.Category = CategoryStreet
	assert.Equal(t, "street/crowd.png", p.AssetKey())
	assert.Equal(t, AssetKey(CategoryStreet, "crowd.png"), p.AssetKey())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" street ")
	assert.NoError(t, err)
	assert.Equal(t, CategoryStreet, c)

	_, err = ParseCategory("portraits")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIdentifier_Validate(t *testing.T) {
	assert.NoError(t, ByID(3).Validate())
	assert.NoError(t, ByFilename("a.jpg").Validate())
	assert.ErrorIs(t, Identifier{}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Identifier{ID: 1, Filename: "a.jpg"}.Validate(), ErrInvalidArgument)
}
