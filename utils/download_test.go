package utils

import (
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	}))
	defer srv.Close()

	f, err := DownloadFile(srv.URL+"/sample.png", "image")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	defer f.Close()

	assert.Equal(t, ".png", filepath.Ext(f.Name()))
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestUtils_ShouldRejectWrongKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text body"))
	}))
	defer srv.Close()

	_, err := DownloadFile(srv.URL, "image")
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://example.com/clip.mp4"))
	assert.False(t, IsValidUrl("clip.mp4"))
	assert.False(t, IsValidUrl("-"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(fname)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	ftype, err := DetectContentType(fname)
	require.NoError(t, err)
	assert.True(t, strings.Contains(ftype, "image"), "got %v", ftype)
}

func TestUtils_SeqName(t *testing.T) {
	assert.Equal(t, "frame_00001.png", SeqName("frame", 1, 5, ".png"))
	assert.Equal(t, "row_12.gif", SeqName("row", 12, 2, ".gif"))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, "1:05", FormatTimestamp(65.4))
}
