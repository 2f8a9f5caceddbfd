package images

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/neuropulse/neuropulse-server/internal/storage"
)

// ErrInvalidImage is returned when the uploaded bytes are not a decodable
// PNG/JPG/WEBP image.
var ErrInvalidImage = errors.New("uploaded file is not a valid PNG/JPG/WEBP image")

// UploadResult names the stored object and its public URL.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Uploader validates, transcodes and content-hashes MCQ media before
// handing it to the blob store.
type Uploader struct {
	blobs   storage.BlobStore
	cdnBase string
}

func NewUploader(blobs storage.BlobStore, cdnBase string) *Uploader {
	return &Uploader{blobs: blobs, cdnBase: strings.TrimRight(cdnBase, "/")}
}

// UploadWebP decodes data (honoring EXIF orientation), re-encodes it as
// lossy WebP at the given quality and stores it under a content-addressed
// key: mcq/<mcqID>/<role>_<hash10>.webp.
func (u *Uploader) UploadWebP(ctx context.Context, mcqID, role string, data []byte, quality float32) (UploadResult, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return UploadResult{}, ErrInvalidImage
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return UploadResult{}, fmt.Errorf("webp encode: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	hash := hex.EncodeToString(sum[:])[:10]
	key := fmt.Sprintf("mcq/%s/%s_%s.webp", mcqID, role, hash)

	if _, err := u.blobs.Put(ctx, key, bytes.NewReader(buf.Bytes()), storage.PutOptions{
		ContentType:  "image/webp",
		CacheControl: "public, max-age=31536000, immutable",
	}); err != nil {
		return UploadResult{}, err
	}

	res := UploadResult{Key: key}
	if u.cdnBase != "" {
		res.URL = u.cdnBase + "/" + key
	}
	return res, nil
}
