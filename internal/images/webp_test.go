package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/neuropulse/neuropulse-server/internal/storage"
)

type fakeBlobs struct {
	objects map[string][]byte
	opts    map[string]storage.PutOptions
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, opts: map[string]storage.PutOptions{}}
}

func (f *fakeBlobs) Put(_ context.Context, key string, r io.Reader, opts storage.PutOptions) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	f.opts[key] = opts
	return key, nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.objects[key])), nil
}

func (f *fakeBlobs) SignedURL(_ context.Context, key string) (string, error) {
	return "fake://" + key, nil
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUploadWebP(t *testing.T) {
	blobs := newFakeBlobs()
	u := NewUploader(blobs, "https://cdn.example.com/")

	res, err := u.UploadWebP(context.Background(), "NEURO_000042", "stem", pngFixture(t), 88)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(res.Key, "mcq/NEURO_000042/stem_") || !strings.HasSuffix(res.Key, ".webp") {
		t.Errorf("key = %q", res.Key)
	}
	if res.URL != "https://cdn.example.com/"+res.Key {
		t.Errorf("url = %q", res.URL)
	}

	data := blobs.objects[res.Key]
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Error("stored object is not a WebP container")
	}
	if opts := blobs.opts[res.Key]; opts.ContentType != "image/webp" || !strings.Contains(opts.CacheControl, "immutable") {
		t.Errorf("put options = %+v", opts)
	}
}

func TestUploadWebPDeterministicKey(t *testing.T) {
	u := NewUploader(newFakeBlobs(), "")
	data := pngFixture(t)

	a, err := u.UploadWebP(context.Background(), "NEURO_000001", "explanation", data, 90)
	if err != nil {
		t.Fatal(err)
	}
	b, err := u.UploadWebP(context.Background(), "NEURO_000001", "explanation", data, 90)
	if err != nil {
		t.Fatal(err)
	}
	if a.Key != b.Key {
		t.Errorf("same bytes produced different keys: %q vs %q", a.Key, b.Key)
	}
	if a.URL != "" {
		t.Errorf("url without cdn base = %q", a.URL)
	}
}

func TestUploadWebPRejectsGarbage(t *testing.T) {
	u := NewUploader(newFakeBlobs(), "")
	if _, err := u.UploadWebP(context.Background(), "NEURO_000001", "stem", []byte("not an image"), 88); err != ErrInvalidImage {
		t.Errorf("got %v", err)
	}
}
