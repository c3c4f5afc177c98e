package freya

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

type memStore struct {
	key         string
	body        []byte
	contentType string
	signedCalls int
}

func (m *memStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	m.key, m.body, m.contentType = key, body, contentType
	return nil
}

func (m *memStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.signedCalls++
	return "https://cdn.example.com/" + key + "?sig=abc", nil
}

func TestAnnotateUploadsOverlayAndRecordsAsset(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.FreyaPostState{}, &model.FreyaRun{}, &model.FreyaImageAsset{}))

	store := &memStore{}
	a := NewAnnotator(store, repository.NewFreyaRepository(db))
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	signed, err := a.Annotate(context.Background(), "p1",
		`https://img.example.com/dash.jpg?a=1&b=2`, "warning light locations",
		[]Annotation{
			{X: 25, Y: 40, Label: "TPMS warning"},
			{X: 70, Y: 55, Label: `Coolant temp <high>`},
		})
	require.NoError(t, err)

	wantKey := fmt.Sprintf("p1/annotated_p1_%d.svg", fixed.Unix())
	require.Equal(t, wantKey, store.key)
	require.Equal(t, "image/svg+xml", store.contentType)
	require.Equal(t, "https://cdn.example.com/"+wantKey+"?sig=abc", signed)
	require.Equal(t, 1, store.signedCalls)

	svg := string(store.body)
	// source URL is XML-escaped inside the image element
	require.Contains(t, svg, "https://img.example.com/dash.jpg?a=1&amp;b=2")
	// two pins, numbered
	require.Contains(t, svg, `>1</text>`)
	require.Contains(t, svg, `>2</text>`)
	require.Contains(t, svg, "1. TPMS warning")
	require.Contains(t, svg, "2. Coolant temp &lt;high&gt;")

	var asset model.FreyaImageAsset
	require.NoError(t, db.Where("post_id = ?", "p1").First(&asset).Error)
	require.Equal(t, wantKey, asset.StoragePath)
	require.Equal(t, "warning light locations", asset.Description)
	require.NotEmpty(t, asset.ID)
}

func TestRenderOverlayNoPins(t *testing.T) {
	svg := renderOverlay("https://img.example.com/car.jpg", nil)
	require.Contains(t, svg, `<image href="https://img.example.com/car.jpg"`)
	require.NotContains(t, svg, "<circle")
}
