package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVar(t *testing.T) {
	SetCategories([]string{"nature", "street", "concert"})

	tests := []struct {
		name    string
		value   string
		tag     string
		wantMsg string
	}{
		{name: "required ok", value: "x", tag: "required"},
		{name: "required empty", value: "", tag: "required", wantMsg: "is required"},
		{name: "category ok", value: "street", tag: "required,photo_category"},
		{name: "category other", value: "other", tag: "required,photo_category", wantMsg: "must be one of: nature, street, concert"},
		{name: "image ext ok", value: "a.JPG", tag: "image_ext"},
		{name: "image ext bad", value: "a.txt", tag: "image_ext", wantMsg: "must end in .jpg, .jpeg, .png, .gif or .webp"},
		{name: "date ok", value: "2024-02-29", tag: "iso_date"},
		{name: "date bad day", value: "2023-02-29", tag: "iso_date", wantMsg: "must be a date in YYYY-MM-DD format"},
		{name: "date bad format", value: "2023-2-9", tag: "iso_date", wantMsg: "must be a date in YYYY-MM-DD format"},
		{name: "date omitted", value: "", tag: "omitempty,iso_date"},
		{name: "range ok", value: "4", tag: "int_range=0:4"},
		{name: "range low", value: "-1", tag: "int_range=0:4", wantMsg: "must be an integer between 0 and 4"},
		{name: "range high", value: "8", tag: "int_range=1:7", wantMsg: "must be an integer between 1 and 7"},
		{name: "range not int", value: "1.5", tag: "int_range=1:7", wantMsg: "must be an integer between 1 and 7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateVar(tc.value, tc.tag)
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestSetCategories(t *testing.T) {
	t.Cleanup(func() { SetCategories([]string{"nature", "street", "concert"}) })

	names := []string{"aerial", "portrait"}
	SetCategories(names)
	names[0] = "changed"

	assert.NoError(t, ValidateVar("aerial", "photo_category"))
	err := ValidateVar("nature", "photo_category")
	if assert.Error(t, err) {
		assert.Equal(t, "must be one of: aerial, portrait", err.Error())
	}

	SetCategories(nil)
	assert.Error(t, ValidateVar("aerial", "photo_category"))
}
