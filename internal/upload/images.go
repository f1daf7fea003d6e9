package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"suits-world/internal/models"
)

var (
	ErrNoFiles        = errors.New("no files uploaded")
	ErrNoValidImages  = errors.New("no valid images uploaded")
	errNotAnImage     = errors.New("only image files are allowed")
	errTooLarge       = errors.New("file is too large")
	errTooManyFiles   = errors.New("too many files")
	errInvalidEncoded = errors.New("invalid base64 data")
	errStoreFailed    = errors.New("failed to store image")
)

// Rejection names a file that was skipped and why.
type Rejection struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Result holds the images ready to attach to a product. The first accepted
// image is primary.
type Result struct {
	Images   []models.ProductImage `json:"images"`
	Rejected []Rejection           `json:"rejected"`
}

func (r *Result) accept(url, alt string) {
	r.Images = append(r.Images, models.ProductImage{URL: url, Alt: alt, IsPrimary: len(r.Images) == 0})
}

func (r *Result) reject(file string, err error) {
	r.Rejected = append(r.Rejected, Rejection{File: file, Reason: err.Error()})
}

func (r *Result) orErr() (Result, error) {
	if len(r.Images) == 0 {
		return *r, ErrNoValidImages
	}
	return *r, nil
}

type Limits struct {
	MaxBytes int64
	MaxFiles int
}

// EncodedImage is one entry of a base64 upload: a data URL or bare base64.
type EncodedImage struct {
	Data string `json:"data"`
	Alt  string `json:"alt"`
}

// Service checks uploaded images and stores the accepted ones.
type Service struct {
	store   ImageStore
	limits  Limits
	baseURL string
	newName func(ext string) string
}

func NewService(store ImageStore, limits Limits, publicBaseURL string) *Service {
	return &Service{
		store:   store,
		limits:  limits,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		newName: func(ext string) string { return uuid.NewString() + ext },
	}
}

// URL is where a stored image is served from.
func (s *Service) URL(name string) string {
	return s.baseURL + "/api/upload/images/" + name
}

// SaveMultipart stores every acceptable file. Files that are not images, too
// large, or beyond the file limit are reported in Rejected.
func (s *Service) SaveMultipart(ctx context.Context, files []*multipart.FileHeader) (Result, error) {
	if len(files) == 0 {
		return Result{}, ErrNoFiles
	}

	res := Result{Images: []models.ProductImage{}, Rejected: []Rejection{}}
	for i, fh := range files {
		if i >= s.limits.MaxFiles {
			res.reject(fh.Filename, errTooManyFiles)
			continue
		}
		if fh.Size > s.limits.MaxBytes {
			res.reject(fh.Filename, errTooLarge)
			continue
		}
		data, err := s.readFile(fh)
		if err != nil {
			res.reject(fh.Filename, err)
			continue
		}
		name, err := s.saveImage(ctx, data)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.reject(fh.Filename, err)
			continue
		}
		res.accept(s.URL(name), fh.Filename)
	}
	return res.orErr()
}

func (s *Service) readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.limits.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.limits.MaxBytes {
		return nil, errTooLarge
	}
	return data, nil
}

func (s *Service) saveImage(ctx context.Context, data []byte) (string, error) {
	mtype, err := sniffImage(data)
	if err != nil {
		return "", err
	}
	name := s.newName(mtype.Extension())
	if err := s.store.Save(ctx, name, mtype.String(), bytes.NewReader(data)); err != nil {
		log.Printf("❌ failed to store image %s: %v", name, err)
		return "", errStoreFailed
	}
	return name, nil
}

// DecodeBase64 checks each encoded image and returns the accepted ones as data
// URLs. Nothing is written to the store.
func (s *Service) DecodeBase64(images []EncodedImage) (Result, error) {
	if len(images) == 0 {
		return Result{}, ErrNoFiles
	}

	res := Result{Images: []models.ProductImage{}, Rejected: []Rejection{}}
	for i, img := range images {
		label := img.Alt
		if label == "" {
			label = fmt.Sprintf("image-%d", i+1)
		}
		if i >= s.limits.MaxFiles {
			res.reject(label, errTooManyFiles)
			continue
		}
		data, err := decodeBase64(img.Data)
		if err != nil {
			res.reject(label, err)
			continue
		}
		if int64(len(data)) > s.limits.MaxBytes {
			res.reject(label, errTooLarge)
			continue
		}
		mtype, err := sniffImage(data)
		if err != nil {
			res.reject(label, err)
			continue
		}
		res.accept("data:"+mtype.String()+";base64,"+base64.StdEncoding.EncodeToString(data), label)
	}
	return res.orErr()
}

func sniffImage(data []byte) (*mimetype.MIME, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errNotAnImage
	}
	return mtype, nil
}

// decodeBase64 accepts "data:<type>;base64,<payload>" or a bare payload. The
// declared type is ignored; the bytes are sniffed later.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		header, payload, found := strings.Cut(s, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, errInvalidEncoded
		}
		s = payload
	}
	if s == "" {
		return nil, errInvalidEncoded
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, errInvalidEncoded
	}
	return data, nil
}

func (s *Service) Open(ctx context.Context, name string) (*Object, error) {
	return s.store.Open(ctx, name)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}
