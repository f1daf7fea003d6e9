package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 32)...)
)

type part struct {
	name string
	data []byte
}

// fileHeaders builds real multipart file headers for the "images" field.
func fileHeaders(t *testing.T, parts ...part) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := w.CreateFormFile("images", p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["images"]
}

func newTestService(t *testing.T, limits Limits) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	svc := NewService(store, limits, "http://localhost:5000/")
	n := 0
	svc.newName = func(ext string) string {
		n++
		return "img-" + string(rune('0'+n)) + ext
	}
	return svc, dir
}

func TestService_SaveMultipart(t *testing.T) {
	svc, dir := newTestService(t, Limits{MaxBytes: 1024, MaxFiles: 10})

	files := fileHeaders(t,
		part{"front.png", pngBytes},
		part{"notes.txt", []byte("hello world")},
		part{"back.gif", gifBytes},
	)
	res, err := svc.SaveMultipart(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, res.Images, 2)
	assert.Equal(t, "http://localhost:5000/api/upload/images/img-1.png", res.Images[0].URL)
	assert.Equal(t, "front.png", res.Images[0].Alt)
	assert.True(t, res.Images[0].IsPrimary)
	assert.Equal(t, "http://localhost:5000/api/upload/images/img-2.gif", res.Images[1].URL)
	assert.False(t, res.Images[1].IsPrimary)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "notes.txt", res.Rejected[0].File)
	assert.Equal(t, "only image files are allowed", res.Rejected[0].Reason)

	stored, err := os.ReadFile(filepath.Join(dir, "img-1.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestService_SaveMultipartLimits(t *testing.T) {
	svc, _ := newTestService(t, Limits{MaxBytes: int64(len(pngBytes)), MaxFiles: 1})

	files := fileHeaders(t,
		part{"a.png", pngBytes},
		part{"b.png", pngBytes},
	)
	res, err := svc.SaveMultipart(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, res.Images, 1)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "too many files", res.Rejected[0].Reason)

	big := append(append([]byte{}, pngBytes...), 0)
	_, err = svc.SaveMultipart(context.Background(), fileHeaders(t, part{"big.png", big}))
	assert.ErrorIs(t, err, ErrNoValidImages)
}

func TestService_SaveMultipartNothingUsable(t *testing.T) {
	svc, _ := newTestService(t, Limits{MaxBytes: 1024, MaxFiles: 10})

	_, err := svc.SaveMultipart(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	res, err := svc.SaveMultipart(context.Background(), fileHeaders(t, part{"x.txt", []byte("plain")}))
	assert.ErrorIs(t, err, ErrNoValidImages)
	assert.Len(t, res.Rejected, 1)
}

func TestService_DecodeBase64(t *testing.T) {
	svc, dir := newTestService(t, Limits{MaxBytes: 1024, MaxFiles: 10})
	encoded := base64.StdEncoding.EncodeToString(pngBytes)

	res, err := svc.DecodeBase64([]EncodedImage{
		{Data: "data:image/jpeg;base64," + encoded, Alt: "declared jpeg"},
		{Data: strings.TrimRight(base64.StdEncoding.EncodeToString(gifBytes), "=")},
		{Data: "%%%not base64%%%", Alt: "junk"},
		{Data: base64.StdEncoding.EncodeToString([]byte("just text")), Alt: "text"},
	})
	require.NoError(t, err)

	require.Len(t, res.Images, 2)
	assert.Equal(t, "data:image/png;base64,"+encoded, res.Images[0].URL)
	assert.True(t, res.Images[0].IsPrimary)
	assert.Equal(t, "image-2", res.Images[1].Alt)
	assert.True(t, strings.HasPrefix(res.Images[1].URL, "data:image/gif;base64,"))

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, Rejection{File: "junk", Reason: "invalid base64 data"}, res.Rejected[0])
	assert.Equal(t, Rejection{File: "text", Reason: "only image files are allowed"}, res.Rejected[1])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStore(t *testing.T) {
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a.png", "image/png", bytes.NewReader(pngBytes)))
	assert.Error(t, store.Save(ctx, "a.png", "image/png", bytes.NewReader(pngBytes)), "names are never overwritten")

	obj, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(obj)
	require.NoError(t, obj.Close())
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngBytes)), obj.Size)

	require.NoError(t, store.Delete(ctx, "a.png"))
	assert.ErrorIs(t, store.Delete(ctx, "a.png"), ErrImageNotFound)
	_, err = store.Open(ctx, "a.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`, "a\x00.png"} {
		assert.True(t, errors.Is(ValidName(name), ErrInvalidName), name)
	}
	assert.NoError(t, ValidName("3f1c2a7e-1b2c-4d5e-8f90-123456789abc.png"))
}
