package photo

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Create(t *testing.T) {
	input := "filename,category,caption,location,country,subCategory,date\n" +
		"sunset.jpg,nature,Balloons at dawn,Cappadocia,Turkey,Sky,2023-05-01\n" +
		"\"tram.jpg\",street,\"Tram, evening\",Istanbul,Turkey,,\n"

	batch, err := ParseCSV(strings.NewReader(input), ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, ModeCreate, batch.Mode)
	assert.Equal(t, []Column{ColumnFilename, ColumnCategory, ColumnCaption, ColumnLocation, ColumnCountry, ColumnSubCategory, ColumnDate}, batch.Columns)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "Sky", batch.Records[0][ColumnSubCategory])
	assert.Equal(t, "Tram, evening", batch.Records[1][ColumnCaption])
	assert.Equal(t, "", batch.Records[1][ColumnDate])
}

func TestParseCSV_MissingRequiredColumn(t *testing.T) {
	input := "filename,category,location,country\n" +
		"sunset.jpg,nature,Cappadocia,Turkey\n"

	_, err := ParseCSV(strings.NewReader(input), ModeCreate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchRejected))

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Len(t, batchErr.Errors, 1)
	assert.Equal(t, ColumnCaption, batchErr.Errors[0].Field)
	assert.Equal(t, 0, batchErr.Errors[0].Row)
	assert.Contains(t, err.Error(), "caption")
}

func TestParseCSV_HeaderProblems(t *testing.T) {
	tests := []struct {
		name   string
		header string
		mode   Mode
		field  Column
	}{
		{name: "unknown column", header: "filename,category,caption,location,country,rating", mode: ModeCreate, field: "rating"},
		{name: "duplicate column", header: "filename,category,caption,caption,location,country", mode: ModeCreate, field: ColumnCaption},
		{name: "id on create", header: "id,filename,category,caption,location,country", mode: ModeCreate, field: ColumnID},
		{name: "update without key", header: "caption,location", mode: ModeUpdate, field: ColumnID},
		{name: "update without changes", header: "id,filename", mode: ModeUpdate, field: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tc.header+"\n"), tc.mode)
			var batchErr *BatchError
			require.True(t, errors.As(err, &batchErr), "got %v", err)
			require.Len(t, batchErr.Errors, 1)
			assert.Equal(t, tc.field, batchErr.Errors[0].Field)
			assert.ErrorIs(t, batchErr.Errors[0], ErrInvalidArgument)
		})
	}
}

func TestParseCSV_UpdateKey(t *testing.T) {
	batch, err := ParseCSV(strings.NewReader("filename,caption\nsunset.jpg,New\n"), ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, ColumnFilename, batch.Key)

	batch, err = ParseCSV(strings.NewReader("caption,id,filename\nNew,3,sunset.jpg\n"), ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, ColumnID, batch.Key)
}

func TestParseCSV_MalformedRowsReportedTogether(t *testing.T) {
	input := "filename,caption\n" +
		"a.jpg\n" +
		"b.jpg,ok\n" +
		"c.jpg,too,many\n"

	_, err := ParseCSV(strings.NewReader(input), ModeUpdate)
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, []int{1, 3}, batchErr.Rows())
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), ModeCreate)
	assert.ErrorIs(t, err, ErrBatchRejected)

	_, err = ParseCSV(strings.NewReader("filename,category,caption,location,country\n"), ModeCreate)
	assert.ErrorIs(t, err, ErrBatchRejected)
}

func TestWriteCSV_RoundTripsThroughUpdate(t *testing.T) {
	p := samplePhoto("sunset.jpg", CategoryNature, "Turkey", "Cappadocia", "Balloons, at dawn")
	p.ID = 12
	p.HomepageFeatured = ptr(2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*Photo{p}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,filename,category,caption,location,country,sub_category,date,homepage_featured,category_featured,country_featured", lines[0])

	batch, err := ParseCSV(&buf, ModeUpdate)
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, ColumnID, batch.Key)
	assert.Equal(t, "12", batch.Records[0][ColumnID])
	assert.Equal(t, "Balloons, at dawn", batch.Records[0][ColumnCaption])
	assert.Equal(t, "2", batch.Records[0][ColumnHomepageFeatured])
	assert.Equal(t, "", batch.Records[0][ColumnCountryFeatured])
}
