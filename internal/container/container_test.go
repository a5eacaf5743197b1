package container

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/photo-curator-go/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: 240, B: 240, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "board.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "0",
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		LogLevel:           "error",
		DisplayWidth:       1080,
		DisplayHeight:      1920,
		FFprobePath:        "ffprobe",
		BaselineDir:        dir,
		BaselineCache:      filepath.Join(t.TempDir(), "baselines.zst"),
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
}

func TestNewContainerWiresBaselinesAndHandler(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, c.Config())
	assert.Len(t, c.Service().Baselines(), 1)
	assert.FileExists(t, cfg.BaselineCache)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Baselines int `json:"baselines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Baselines)
}

func TestNewContainerWithoutBaselines(t *testing.T) {
	cfg := testConfig(t)
	cfg.BaselineDir = ""
	cfg.BaselineCache = ""

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, c.Service().Baselines())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewContainerRejectsLocalFilesByDefault(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, c.Service().Baselines(), 1, "baselines are read through their own validator")

	for _, ref := range []string{"/etc/passwd", filepath.Join(cfg.BaselineDir, "board.png")} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/classify/supported", strings.NewReader(`{"image":`+strconv.Quote(ref)+`}`))
		req.Header.Set("Content-Type", "application/json")
		c.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, ref)
	}
}
