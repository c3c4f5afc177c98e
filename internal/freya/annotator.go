package freya

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

// Annotation is one numbered pin placed on the source image. Coordinates are
// percentages of the image dimensions, so the overlay scales with the source.
type Annotation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// ObjectStore abstracts the bucket so annotator tests can run without MinIO.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// MinioStore backs ObjectStore with a MinIO / S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinioStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

const signedURLTTL = 7 * 24 * time.Hour

// Annotator renders an SVG pin overlay for a post image, uploads it and
// records the asset. The SVG embeds the source image by URL so no image
// decoding happens server-side.
type Annotator struct {
	store ObjectStore
	repo  repository.FreyaRepository
	now   func() time.Time
}

func NewAnnotator(store ObjectStore, repo repository.FreyaRepository) *Annotator {
	return &Annotator{store: store, repo: repo, now: time.Now}
}

// Annotate uploads the overlay and returns a signed URL valid for seven days.
func (a *Annotator) Annotate(ctx context.Context, postID, imageURL, description string, pins []Annotation) (string, error) {
	svg := renderOverlay(imageURL, pins)
	key := fmt.Sprintf("%s/annotated_%s_%d.svg", postID, postID, a.now().Unix())

	if err := a.store.Put(ctx, key, []byte(svg), "image/svg+xml"); err != nil {
		return "", fmt.Errorf("upload overlay: %w", err)
	}
	signed, err := a.store.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("sign overlay url: %w", err)
	}
	if err := a.repo.InsertImageAsset(ctx, &model.FreyaImageAsset{
		PostID:      postID,
		StoragePath: key,
		Description: description,
	}); err != nil {
		return "", err
	}
	return signed, nil
}

// renderOverlay draws numbered circles at each pin plus a legend box listing
// the labels underneath the image.
func renderOverlay(imageURL string, pins []Annotation) string {
	const w, h = 800, 600
	legendH := 30 + 22*len(pins)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		w, h+legendH, w, h+legendH)
	fmt.Fprintf(&sb, `<image href="%s" x="0" y="0" width="%d" height="%d" preserveAspectRatio="xMidYMid meet"/>`,
		escapeXML(imageURL), w, h)

	for i, p := range pins {
		cx := p.X / 100 * w
		cy := p.Y / 100 * h
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="14" fill="#e63946" stroke="#fff" stroke-width="3"/>`, cx, cy)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" fill="#fff" font-size="14" font-family="sans-serif" font-weight="bold">%d</text>`,
			cx, cy, i+1)
	}

	fmt.Fprintf(&sb, `<rect x="0" y="%d" width="%d" height="%d" fill="#1d3557"/>`, h, w, legendH)
	for i, p := range pins {
		fmt.Fprintf(&sb, `<text x="12" y="%d" fill="#fff" font-size="14" font-family="sans-serif">%d. %s</text>`,
			h+24+22*i, i+1, escapeXML(p.Label))
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
