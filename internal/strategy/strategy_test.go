package strategy

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/photo-curator-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-curator-go/internal/errors"
	"github.com/anime-shed/photo-curator-go/internal/platform"
	"github.com/anime-shed/photo-curator-go/internal/repository"
	"github.com/anime-shed/photo-curator-go/internal/service"
	"github.com/anime-shed/photo-curator-go/internal/storage"
)

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func noise(seed int64, w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

func newTestService(t *testing.T, baselines []*analyzer.Histogram) service.ClassificationService {
	t.Helper()
	repo := repository.NewSourceImageRepository(storage.NewRouter(), nil)
	return service.NewClassificationService(repo, analyzer.NewImageAnalyzer(analyzer.DefaultOptions()),
		service.WithDisplay(platform.NewStaticDisplay(60, 120)),
		service.WithBaselines(baselines),
	)
}

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry(newTestService(t, nil))

	checks, err := registry.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, checks, len(DefaultChecks))
	for i, check := range checks {
		assert.Equal(t, DefaultChecks[i], check.GetCheckName())
	}

	checks, err = registry.Resolve([]string{CheckMemoDark, CheckMemoDark, CheckDark})
	require.NoError(t, err)
	assert.Len(t, checks, 2)

	_, err = registry.Resolve([]string{"sepia"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	assert.Contains(t, registry.Names(), CheckDecoratedBySoftware)
	assert.Len(t, registry.Names(), 8)
}

func TestCurator_Curate(t *testing.T) {
	dir := t.TempDir()
	board := checkerboard(60, 120, 6)
	sharp := writePNG(t, filepath.Join(dir, "sharp.png"), board)
	sharpCopy := writePNG(t, filepath.Join(dir, "sharp-copy.png"), board)
	night := writePNG(t, filepath.Join(dir, "Instagram_night.png"), uniform(80, 80, color.RGBA{5, 5, 5, 255}))
	missing := filepath.Join(dir, "missing.png")

	baseline, err := analyzer.ComputeHistogram(board)
	require.NoError(t, err)
	svc := newTestService(t, []*analyzer.Histogram{baseline})
	curator := NewCurator(svc, NewRegistry(svc), 2)

	refs := []string{sharp, night, missing, sharpCopy}
	result, err := curator.Curate(context.Background(), refs,
		[]string{CheckDark, CheckBlur, CheckDecorated, CheckScreenshot, CheckSupported, CheckMemoWhite}, false)
	require.NoError(t, err)
	require.Len(t, result.Items, len(refs))

	for i, item := range result.Items {
		assert.Equal(t, refs[i], item.Image)
	}

	sharpItem := result.Items[0].Checks
	assert.False(t, sharpItem[CheckDark].Result)
	assert.True(t, sharpItem[CheckDark].Evaluated)
	assert.False(t, sharpItem[CheckBlur].Result)
	assert.True(t, sharpItem[CheckScreenshot].Positive())
	assert.True(t, sharpItem[CheckSupported].Positive())
	assert.True(t, sharpItem[CheckMemoWhite].Positive())

	nightItem := result.Items[1].Checks
	assert.True(t, nightItem[CheckDark].Positive())
	assert.True(t, nightItem[CheckBlur].Evaluated)
	assert.False(t, nightItem[CheckBlur].Result)
	assert.True(t, nightItem[CheckDecorated].Positive())
	assert.False(t, nightItem[CheckScreenshot].Result)

	missingItem := result.Items[2].Checks
	assert.False(t, missingItem[CheckDark].Evaluated)
	assert.Equal(t, string(apperrors.ErrorTypeDecode), missingItem[CheckDark].ErrorType)
	assert.Nil(t, result.Groups)
}

func TestCurator_Group(t *testing.T) {
	dir := t.TempDir()
	photo := noise(11, 400, 300)
	a := writePNG(t, filepath.Join(dir, "a.png"), photo)
	other := writePNG(t, filepath.Join(dir, "other.png"), noise(12, 400, 300))
	b := writePNG(t, filepath.Join(dir, "b.png"), photo)

	svc := newTestService(t, nil)
	result, err := NewCurator(svc, NewRegistry(svc), 0).Curate(context.Background(), []string{a, other, b}, []string{CheckDark}, true)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{a, b}}, result.Groups)
}

func TestCurator_MemoWithoutBaselines(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, filepath.Join(dir, "memo.png"), uniform(40, 40, color.RGBA{250, 250, 250, 255}))

	svc := newTestService(t, nil)
	result, err := NewCurator(svc, NewRegistry(svc), 1).Curate(context.Background(), []string{ref}, []string{CheckMemoDark}, false)
	require.NoError(t, err)
	verdict := result.Items[0].Checks[CheckMemoDark]
	assert.False(t, verdict.Evaluated)
	assert.Equal(t, string(apperrors.ErrorTypePrecondition), verdict.ErrorType)
}

func TestCurator_Cancelled(t *testing.T) {
	svc := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewCurator(svc, NewRegistry(svc), 1).Curate(ctx, []string{"/nope.png"}, []string{CheckDark}, false)
	require.NoError(t, err)
	assert.Equal(t, string(apperrors.ErrorTypeTimeout), result.Items[0].Checks[CheckDark].ErrorType)
}

func TestCurator_RejectedJobsAreNotEvaluated(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, filepath.Join(dir, "night.png"), uniform(40, 40, color.RGBA{5, 5, 5, 255}))

	svc := newTestService(t, nil)
	registry := NewRegistry(svc)
	curator := NewCurator(svc, registry, 1)
	checks, err := registry.Resolve([]string{CheckDark, CheckBlur})
	require.NoError(t, err)

	pool := analyzer.NewWorkerPool(1)
	pool.Close()

	items := curator.evaluateAll(context.Background(), pool, []string{ref, "/other.png"}, checks)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Len(t, item.Checks, 2)
		for name, verdict := range item.Checks {
			assert.False(t, verdict.Evaluated, name)
			assert.False(t, verdict.Result, name)
			assert.Equal(t, string(apperrors.ErrorTypeInternal), verdict.ErrorType, name)
		}
	}
	assert.Equal(t, ref, items[0].Image)
	assert.Equal(t, "/other.png", items[1].Image)
}
