package form

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// SubmitFunc receives a validated snapshot of the values.
type SubmitFunc func(ctx context.Context, values Values) error

// PreviewFunc derives a displayable URI for an image file.
type PreviewFunc func(ctx context.Context, file *FileHandle) (string, error)

// State is a copy of a controller's values, errors and previews.
type State struct {
	Values   Values
	Errors   Errors
	Previews map[string]string
}

// Controller tracks one form instance. All methods are safe for concurrent
// use; preview derivations complete on their own goroutines.
type Controller struct {
	mu       sync.Mutex
	fields   []Field
	initial  Values
	values   Values
	errors   Errors
	previews map[string]string
	// tokens holds the request token of the latest preview per field. A
	// result whose token no longer matches is stale and dropped.
	tokens map[string]string

	onSubmit SubmitFunc
	onCancel func()
	preview  PreviewFunc
	run      func(func())
	pending  sync.WaitGroup
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithCancel sets the handler invoked by Cancel.
func WithCancel(fn func()) ControllerOption {
	return func(c *Controller) { c.onCancel = fn }
}

// WithPreview replaces the default data URI encoder.
func WithPreview(fn PreviewFunc) ControllerOption {
	return func(c *Controller) {
		if fn != nil {
			c.preview = fn
		}
	}
}

// WithRunner controls how preview work is scheduled. Tests pass a
// synchronous runner.
func WithRunner(run func(func())) ControllerOption {
	return func(c *Controller) {
		if run != nil {
			c.run = run
		}
	}
}

// NewController seeds a controller with initial values.
func NewController(fields []Field, initial Values, onSubmit SubmitFunc, opts ...ControllerOption) *Controller {
	if initial == nil {
		initial = Values{}
	}
	c := &Controller{
		fields:   fields,
		initial:  initial.Clone(),
		values:   initial.Clone(),
		errors:   Errors{},
		previews: map[string]string{},
		tokens:   map[string]string{},
		onSubmit: onSubmit,
		preview:  DataURI,
	}
	c.run = func(fn func()) { go fn() }
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fields returns the descriptors the controller was built with.
func (c *Controller) Fields() []Field { return c.fields }

// Initial returns a copy of the seed values.
func (c *Controller) Initial() Values { return c.initial.Clone() }

// Change sets a value and clears any error recorded for that field.
func (c *Controller) Change(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	delete(c.errors, name)
}

// ChangeFile stores the file handle and, for image types, starts an
// asynchronous preview. Selecting a new file supersedes any preview still
// in flight for that field. Preview failures leave the field without a preview.
func (c *Controller) ChangeFile(ctx context.Context, name string, file *FileHandle) {
	c.mu.Lock()
	c.values[name] = file
	delete(c.errors, name)
	delete(c.previews, name)
	if !file.IsImage() {
		delete(c.tokens, name)
		c.mu.Unlock()
		return
	}
	token := uuid.NewString()
	c.tokens[name] = token
	c.pending.Add(1)
	c.mu.Unlock()

	c.run(func() {
		defer c.pending.Done()
		uri, err := c.preview(ctx, file)
		c.applyPreview(name, token, uri, err)
	})
}

func (c *Controller) applyPreview(name, token, uri string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens[name] != token {
		return
	}
	delete(c.tokens, name)
	if err != nil || uri == "" {
		return
	}
	c.previews[name] = uri
}

// WaitPreviews blocks until every scheduled preview has finished.
func (c *Controller) WaitPreviews() {
	c.pending.Wait()
}

// Submit validates the current values. On failure the errors are stored and
// the submit handler is not called; submitted is false. Otherwise the handler
// runs exactly once with a snapshot and its error is returned unchanged.
func (c *Controller) Submit(ctx context.Context) (submitted bool, err error) {
	c.mu.Lock()
	errs := Validate(c.fields, c.values)
	c.errors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		return false, nil
	}
	snapshot := c.values.Clone()
	c.mu.Unlock()

	if c.onSubmit == nil {
		return true, nil
	}
	return true, c.onSubmit(ctx, snapshot)
}

// Cancel invokes the cancel handler when one is set.
func (c *Controller) Cancel() {
	if c.onCancel != nil {
		c.onCancel()
	}
}

// Reset restores the initial values and discards errors, previews and any
// preview still in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = c.initial.Clone()
	c.errors = Errors{}
	c.previews = map[string]string{}
	c.tokens = map[string]string{}
}

// State returns a copy of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	previews := make(map[string]string, len(c.previews))
	for k, v := range c.previews {
		previews[k] = v
	}
	errs := make(Errors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	return State{Values: c.values.Clone(), Errors: errs, Previews: previews}
}

// SetErrors records externally produced field errors, e.g. from a failed upload.
func (c *Controller) SetErrors(errs Errors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range errs {
		c.errors[k] = v
	}
}

var errEmptyFile = errors.New("empty file")

// DataURI encodes the file as a base64 data URI.
func DataURI(_ context.Context, file *FileHandle) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", errEmptyFile
	}
	return "data:" + file.ContentType + ";base64," + base64.StdEncoding.EncodeToString(file.Data), nil
}
