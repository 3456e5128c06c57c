package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/pkg/config"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/storage"
)

// Kind selects the upload limits.
type Kind string

const (
	KindProduct Kind = "product"
	KindAvatar  Kind = "avatar"
)

const (
	thumbnailSize    = 160
	thumbnailQuality = 70
	megabyte         = 1024 * 1024
)

// Recorder counts upload outcomes.
type Recorder interface {
	Upload(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Upload(string) {}

// Uploader validates, compresses and stores images, returning their public URL.
type Uploader struct {
	store   storage.Storage
	limits  map[Kind]int64
	maxW    int
	maxH    int
	quality int
	pixels  int64
	rec     Recorder
	logg    *logger.Logger
}

func NewUploader(store storage.Storage, cfg config.MediaConfig, logg *logger.Logger, rec Recorder) (*Uploader, error) {
	if store == nil {
		return nil, fmt.Errorf("storage required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Uploader{
		store: store,
		limits: map[Kind]int64{
			KindProduct: int64(cfg.ProductMaxUploadMB) * megabyte,
			KindAvatar:  int64(cfg.AvatarMaxUploadMB) * megabyte,
		},
		maxW:    cfg.ImageMaxWidth,
		maxH:    cfg.ImageMaxHeight,
		quality: cfg.ImageQuality,
		pixels:  cfg.ImageMaxPixels,
		rec:     rec,
		logg:    logg,
	}, nil
}

// Validate checks presence, media type and size for the kind.
func (u *Uploader) Validate(kind Kind, file *form.FileHandle) error {
	if file == nil || len(file.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "No se seleccionó ningún archivo")
	}
	if !file.IsImage() {
		return pkgerrors.New(pkgerrors.CodeUnsupported, "El archivo debe ser una imagen")
	}
	size := file.Size
	if size <= 0 {
		size = int64(len(file.Data))
	}
	if limit := u.limits[kind]; limit > 0 && size > limit {
		return pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("La imagen no debe superar %dMB", limit/megabyte))
	}
	return nil
}

// Upload validates and compresses the file then stores it.
func (u *Uploader) Upload(ctx context.Context, kind Kind, file *form.FileHandle) (string, error) {
	if err := u.Validate(kind, file); err != nil {
		u.rec.Upload("rejected")
		return "", err
	}

	data, err := Compress(file.Data, u.maxW, u.maxH, u.quality, u.pixels)
	if errors.Is(err, ErrTooManyPixels) {
		u.rec.Upload("rejected")
		return "", pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "La imagen tiene dimensiones demasiado grandes")
	}
	if err != nil {
		u.rec.Upload("rejected")
		return "", pkgerrors.Wrap(pkgerrors.CodeUnsupported, err, "El archivo debe ser una imagen")
	}

	res, err := u.store.Put(ctx, bytes.NewReader(data), storage.PutInput{
		Filename:    jpegName(file.Filename),
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
	})
	if err != nil {
		u.rec.Upload("failed")
		u.logg.Error(u.logg.WithFields(ctx, map[string]any{"kind": string(kind), "filename": file.Filename}), "store image", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "No se pudo subir la imagen. Intenta nuevamente.")
	}

	u.rec.Upload("stored")
	return res.URL, nil
}

// Thumbnail is a form preview function: a small JPEG data URI.
func (u *Uploader) Thumbnail(ctx context.Context, file *form.FileHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("no file")
	}
	data, err := Compress(file.Data, thumbnailSize, thumbnailSize, thumbnailQuality, u.pixels)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func jpegName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + ".jpg"
}
