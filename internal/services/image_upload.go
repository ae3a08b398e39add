package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

const (
	MaxImageBytes  = 10 * 1024 * 1024
	MaxImagePixels = 40_000_000
	thumbnailSize  = 600
)

// ImageUploadResult is where a stored image can be fetched from.
type ImageUploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ID           string `json:"id"`
}

// BlobStore keeps proposal photos and returns durable URLs for them.
type BlobStore interface {
	Put(ctx context.Context, filename string, r io.Reader) (*ImageUploadResult, error)
}

// readImage reads at most MaxImageBytes and checks the payload decodes as an
// image. Dimensions are checked from the header before any pixel buffer is
// allocated.
func readImage(r io.Reader) ([]byte, image.Image, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "failed reading image")
	}
	if len(data) > MaxImageBytes {
		return nil, nil, "", invalid("image exceeds 10MB")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, "", invalid("not a supported image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, nil, "", invalid(fmt.Sprintf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, MaxImagePixels))
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, "", invalid("not a supported image")
	}
	return data, img, format, nil
}

func imageExt(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		return ext
	}
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// LocalBlobStore writes images under Dir and serves them from BaseURL/media.
// Each upload also gets a JPEG thumbnail bounded to 600x600.
type LocalBlobStore struct {
	Dir     string
	BaseURL string
}

func NewLocalBlobStore(dir, baseURL string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed creating media directory")
	}
	return &LocalBlobStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalBlobStore) Put(ctx context.Context, filename string, r io.Reader) (*ImageUploadResult, error) {
	data, img, format, err := readImage(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	name := id + imageExt(filename, format)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return nil, transient(err, "failed storing image")
	}

	thumbName := id + "_thumb.jpg"
	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 82}); err != nil {
		return nil, errors.Wrap(err, "failed encoding thumbnail")
	}
	if err := os.WriteFile(filepath.Join(s.Dir, thumbName), buf.Bytes(), 0o644); err != nil {
		return nil, transient(err, "failed storing thumbnail")
	}

	return &ImageUploadResult{
		URL:          s.BaseURL + "/media/" + name,
		ThumbnailURL: s.BaseURL + "/media/" + thumbName,
		ID:           id,
	}, nil
}

// ImgurResponse is the Imgur upload API response.
type ImgurResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
		Type       string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImgurBlobStore uploads images to Imgur. Used when IMGUR_CLIENT_ID is set.
type ImgurBlobStore struct {
	ClientID string
	Endpoint string
	Client   *http.Client
}

func NewImgurBlobStore(clientID string) *ImgurBlobStore {
	return &ImgurBlobStore{
		ClientID: clientID,
		Endpoint: "https://api.imgur.com/3/image",
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ImgurBlobStore) Put(ctx context.Context, filename string, r io.Reader) (*ImageUploadResult, error) {
	data, _, _, err := readImage(r)
	if err != nil {
		return nil, err
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64.StdEncoding.EncodeToString(data)); err != nil {
		return nil, errors.Wrap(err, "failed writing request body")
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return nil, errors.Wrap(err, "failed writing request body")
	}
	if err := writer.WriteField("name", filepath.Base(filename)); err != nil {
		return nil, errors.Wrap(err, "failed writing request body")
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, &requestBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed creating request")
	}
	req.Header.Set("Authorization", "Client-ID "+s.ClientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, transient(err, "imgur upload failed")
	}
	defer resp.Body.Close()

	var imgurResp ImgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&imgurResp); err != nil {
		return nil, transient(err, "failed decoding imgur response")
	}
	if !imgurResp.Success {
		return nil, transient(fmt.Errorf("status %d", imgurResp.Status), "imgur upload rejected")
	}

	return &ImageUploadResult{
		URL: imgurResp.Data.Link,
		ID:  imgurResp.Data.ID,
	}, nil
}
