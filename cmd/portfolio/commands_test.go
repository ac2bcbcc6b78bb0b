package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanejorr-team/personal-blog/internal/domain/photo"
)

type closeRecorder struct {
	bytes.Buffer
	closeErr error
	closed   int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return c.closeErr
}

type failingWriter struct{ closeRecorder }

func (f *failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func exportPhotos() []*photo.Photo {
	return []*photo.Photo{{
		ID:       1,
		Filename: "balloons.jpg",
		Category: photo.CategoryNature,
		Caption:  "Balloons at dawn",
		Location: "Cappadocia",
		Country:  "Turkey",
	}}
}

func TestExportTo(t *testing.T) {
	t.Run("writes and closes", func(t *testing.T) {
		w := &closeRecorder{}
		require.NoError(t, exportTo(w, exportPhotos()))
		assert.Equal(t, 1, w.closed)
		assert.True(t, strings.Contains(w.String(), "balloons.jpg"))
	})

	t.Run("close error is returned", func(t *testing.T) {
		w := &closeRecorder{closeErr: errors.New("quota exceeded")}
		err := exportTo(w, exportPhotos())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
		assert.Equal(t, 1, w.closed)
	})

	t.Run("write error wins and file is still closed", func(t *testing.T) {
		w := &failingWriter{}
		err := exportTo(w, exportPhotos())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 1, w.closed)
	})
}
