package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxMemory bounds multipart parsing held in memory.
const DefaultMaxMemory = 8 << 20

// Bind applies a submitted request to the controller: present text-like
// fields go through Change, uploaded files through ChangeFile. Fields absent
// from the request keep their current value.
func (c *Controller) Bind(ctx context.Context, r *http.Request, maxMemory int64) error {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	for _, f := range c.fields {
		name := f.Attrs().Name
		if _, isFile := f.(File); isFile {
			fh, err := readFile(r, name)
			if err != nil {
				return err
			}
			if fh != nil {
				c.ChangeFile(ctx, name, fh)
			}
			continue
		}
		if vals, ok := r.PostForm[name]; ok && len(vals) > 0 {
			c.Change(name, vals[0])
		}
	}
	return nil
}

func readFile(r *http.Request, name string) (*FileHandle, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &FileHandle{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
