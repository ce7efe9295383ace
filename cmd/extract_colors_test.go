package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podshelf/shelf-cli/internal/model"
)

// writeCover renders a solid-color image where the catalog expects the
// book's cover file. The decoder sniffs content, so PNG data behind a .jpg
// name is fine.
func writeCover(t *testing.T, dir, id string, c color.RGBA) string {
	t.Helper()
	coversDir := filepath.Join(dir, "covers")
	require.NoError(t, os.MkdirAll(coversDir, 0o755))

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(coversDir, id+".jpg"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return "covers/" + id + ".jpg"
}

func TestExtractColors_SetsPalette(t *testing.T) {
	dir := useTestConfig(t)

	dark := mustBook(t, "014312774X", "Seeing Like a State", 121)
	darkCover := writeCover(t, dir, dark.ID, color.RGBA{R: 10, G: 10, B: 30, A: 255})
	dark.Cover = &darkCover

	light := mustBook(t, "B075H5MJBH", "India After Gandhi", 50)
	lightCover := writeCover(t, dir, light.ID, color.RGBA{R: 230, G: 230, B: 230, A: 255})
	light.Cover = &lightCover

	noCover := mustBook(t, "0195655389", "The Argumentative Indian", 12)

	seedStore(t, []model.Book{dark, light, noCover})

	err := extractColorsCmd.RunE(extractColorsCmd, nil)
	require.NoError(t, err)

	books, err := newStore().Load()
	require.NoError(t, err)
	byASIN := make(map[string]model.Book)
	for _, b := range books {
		byASIN[b.ASIN] = b
	}

	// Dark cover gets a light text color, light cover keeps the dark default.
	assert.Equal(t, "#0a0a1e", byASIN["014312774X"].BackgroundColor)
	assert.Equal(t, "#ffffff", byASIN["014312774X"].TextColor)

	assert.Equal(t, "#e6e6e6", byASIN["B075H5MJBH"].BackgroundColor)
	assert.Equal(t, model.DefaultTextColor, byASIN["B075H5MJBH"].TextColor)

	// Books without covers are untouched.
	assert.Equal(t, model.DefaultBackgroundColor, byASIN["0195655389"].BackgroundColor)
}

func TestExtractColors_SkipsMissingFile(t *testing.T) {
	useTestConfig(t)

	phantom := "covers/gone.jpg"
	b := mustBook(t, "014312774X", "Seeing Like a State", 121)
	b.Cover = &phantom
	seedStore(t, []model.Book{b})

	err := extractColorsCmd.RunE(extractColorsCmd, nil)
	require.NoError(t, err)

	books, err := newStore().Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultBackgroundColor, books[0].BackgroundColor)
}

func TestExtractColorsCmd_Metadata(t *testing.T) {
	assert.Equal(t, "extract-colors", extractColorsCmd.Use)
	assert.NotEmpty(t, extractColorsCmd.Short)
}
