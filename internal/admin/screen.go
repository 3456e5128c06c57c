package admin

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/internal/media"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
	"go.uber.org/multierr"
)

var (
	ErrBusy   = pkgerrors.New(pkgerrors.CodeConflict, "operación en curso")
	errNoForm = pkgerrors.New(pkgerrors.CodeConflict, "no hay formulario abierto")
)

const maxFormMemory = 8 << 20

// Options carries the lookup lists select fields and detail views draw from,
// keyed by field name.
type Options map[string][]form.Option

// Label returns the option label for value.
func (o Options) Label(field, value string) (string, bool) {
	for _, opt := range o[field] {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}

func lookupOptions(items []catalog.Lookup) []form.Option {
	out := make([]form.Option, 0, len(items))
	for _, it := range items {
		out = append(out, form.Option{Value: strconv.FormatInt(it.ID, 10), Label: it.Name})
	}
	return out
}

// Upload describes the file field whose upload must finish before saving.
type Upload[T any] struct {
	Field string
	Kind  media.Kind
	Apply func(item *T, url string)
}

// Config describes one admin resource. Resources with Fields get create,
// edit and delete; resources with Detail open a detail modal on row click.
type Config[T any] struct {
	Name    string
	Title   string
	Noun    string
	Columns []string
	Size    modal.Size

	ID      func(T) int64
	Row     func(T) table.Row
	Options func(ctx context.Context) (Options, error)
	Summary func(items []T) string

	Fields     func(opts Options) []form.Field
	Values     func(T) form.Values
	FromValues func(v form.Values, base T) (T, error)
	Upload     *Upload[T]

	Detail      func(item T, opts Options, base string) (template.HTML, error)
	DetailTitle func(T) string
}

func (c Config[T]) editable() bool { return c.Fields != nil }

// Uploader stores form files and derives their previews.
type Uploader interface {
	Upload(ctx context.Context, kind media.Kind, file *form.FileHandle) (string, error)
	Thumbnail(ctx context.Context, file *form.FileHandle) (string, error)
}

// Recorder counts form submission outcomes.
type Recorder interface {
	FormSubmission(resource, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) FormSubmission(string, string) {}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Uploader Uploader
	Recorder Recorder
	Logger   *logger.Logger
	// Runner schedules preview work; nil runs it on a new goroutine.
	Runner func(func())
}

// Flash is a one-shot alert shown above the table.
type Flash struct {
	Kind    string
	Message string
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Page is what the HTTP layer drives for one resource of one session.
type Page interface {
	Name() string
	Loaded() bool
	Load(ctx context.Context) error
	OpenCreate(ctx context.Context) error
	Click(ctx context.Context, rowID string, action table.Action) error
	Submit(ctx context.Context, r *http.Request) error
	Cancel()
	Dismiss()
	Busy() bool
	ModalOpen() bool
	Render(w io.Writer, base string) error
	Teardown()
}

// Screen composes a table, a modal and a form around a remote resource. A
// screen belongs to one session; its state lives between requests.
type Screen[T any] struct {
	mu      sync.Mutex
	cfg     Config[T]
	svc     catalog.Resource[T]
	deps    Deps
	modal   *modal.Modal
	items   []T
	options Options
	loaded  bool
	busy    bool
	flashes []Flash

	form     *form.Controller
	selected *T
}

func NewScreen[T any](cfg Config[T], svc catalog.Resource[T], doc *modal.Document, deps Deps) *Screen[T] {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	s := &Screen[T]{cfg: cfg, svc: svc, deps: deps, options: Options{}}
	s.modal = modal.New(doc, modal.Config{Size: cfg.Size, OnClose: s.requestClose})
	return s
}

func (s *Screen[T]) Name() string { return s.cfg.Name }

func (s *Screen[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Screen[T]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Screen[T]) ModalOpen() bool { return s.modal.IsOpen() }

// Items returns a copy of the loaded records.
func (s *Screen[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Flashes drains the pending alerts.
func (s *Screen[T]) Flashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked()
}

func (s *Screen[T]) drainLocked() []Flash {
	out := s.flashes
	s.flashes = nil
	return out
}

// Load fetches the records and lookup lists concurrently. Whatever loaded
// is kept; failures are combined and reported as one alert.
func (s *Screen[T]) Load(ctx context.Context) error {
	var (
		wg               sync.WaitGroup
		items            []T
		opts             Options
		itemsErr, optErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		items, itemsErr = s.svc.GetAll(ctx)
	}()
	if s.cfg.Options != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts, optErr = s.cfg.Options(ctx)
		}()
	}
	wg.Wait()

	err := multierr.Combine(itemsErr, optErr)

	s.mu.Lock()
	defer s.mu.Unlock()
	if itemsErr == nil {
		s.items = items
	}
	if optErr == nil && opts != nil {
		s.options = opts
	}
	if err != nil {
		s.deps.Logger.Error(s.deps.Logger.WithResource(ctx, s.cfg.Name), "load admin screen", err)
		s.flashLocked(FlashError, "Error al cargar datos del servidor")
		return err
	}
	s.loaded = true
	return nil
}

// OpenCreate opens an empty form.
func (s *Screen[T]) OpenCreate(_ context.Context) error {
	if !s.cfg.editable() {
		return pkgerrors.New(pkgerrors.CodeUnsupported, "resource is read-only")
	}
	s.openForm(nil)
	return nil
}

// Click dispatches a table click on rowID.
func (s *Screen[T]) Click(ctx context.Context, rowID string, action table.Action) error {
	s.mu.Lock()
	t := s.tableLocked()
	s.mu.Unlock()

	err := t.Click(ctx, rowID, action)
	if errors.Is(err, table.ErrRowNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "row not found")
	}
	return err
}

func (s *Screen[T]) tableLocked() *table.Table {
	t := &table.Table{Columns: s.cfg.Columns}
	for _, item := range s.items {
		t.Rows = append(t.Rows, s.cfg.Row(item))
	}
	if s.cfg.editable() {
		t.Actions = &table.Actions{Edit: s.edit, Delete: s.remove}
	}
	if s.cfg.Detail != nil {
		t.OnRowClick = s.view
	}
	return t
}

func (s *Screen[T]) find(rowID string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if strconv.FormatInt(s.cfg.ID(item), 10) == rowID {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *Screen[T]) edit(_ context.Context, row table.Row) error {
	item, ok := s.find(row.ID())
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "row not found")
	}
	s.openForm(&item)
	return nil
}

func (s *Screen[T]) view(_ context.Context, row table.Row) error {
	item, ok := s.find(row.ID())
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "row not found")
	}
	title := s.cfg.Noun
	if s.cfg.DetailTitle != nil {
		title = s.cfg.DetailTitle(item)
	}

	s.mu.Lock()
	s.form = nil
	s.selected = &item
	s.mu.Unlock()

	s.modal.SetTitle(title)
	s.modal.Open()
	return nil
}

func (s *Screen[T]) remove(ctx context.Context, row table.Row) error {
	item, ok := s.find(row.ID())
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "row not found")
	}
	id := s.cfg.ID(item)
	if err := s.svc.Delete(ctx, id); err != nil {
		s.flash(FlashError, "Error al eliminar "+strings.ToLower(s.cfg.Noun)+": "+publicMessage(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0:0]
	for _, it := range s.items {
		if s.cfg.ID(it) != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.flashLocked(FlashSuccess, s.cfg.Noun+" eliminado exitosamente")
	return nil
}

func (s *Screen[T]) openForm(existing *T) {
	values := form.Values{}
	title := "Nuevo " + s.cfg.Noun
	if existing != nil {
		values = s.cfg.Values(*existing)
		title = "Editar " + s.cfg.Noun
	}

	s.mu.Lock()
	opts := []form.ControllerOption{form.WithCancel(s.requestClose)}
	if s.deps.Uploader != nil {
		opts = append(opts, form.WithPreview(s.deps.Uploader.Thumbnail))
	}
	if s.deps.Runner != nil {
		opts = append(opts, form.WithRunner(s.deps.Runner))
	}
	s.form = form.NewController(s.cfg.Fields(s.options), values, func(ctx context.Context, v form.Values) error {
		return s.save(ctx, existing, v)
	}, opts...)
	s.selected = nil
	s.mu.Unlock()

	s.modal.SetTitle(title)
	s.modal.Open()
}

// Submit binds the posted form and submits it. Validation failures stay on
// the form and are not returned. Image previews are awaited only when the
// form stays open.
func (s *Screen[T]) Submit(ctx context.Context, r *http.Request) error {
	s.mu.Lock()
	ctrl, busy := s.form, s.busy
	s.mu.Unlock()
	if ctrl == nil {
		return errNoForm
	}
	if busy {
		return ErrBusy
	}

	// previews outlive the request that selected the file
	if err := ctrl.Bind(context.WithoutCancel(ctx), r, maxFormMemory); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form submission")
	}

	submitted, err := ctrl.Submit(ctx)
	if !submitted || err != nil {
		// the form is rendered again, so its previews must be settled
		ctrl.WaitPreviews()
	}
	switch {
	case !submitted:
		s.deps.Recorder.FormSubmission(s.cfg.Name, "invalid")
	case err != nil:
		s.deps.Recorder.FormSubmission(s.cfg.Name, "failed")
	default:
		s.deps.Recorder.FormSubmission(s.cfg.Name, "saved")
	}
	return err
}

func (s *Screen[T]) save(ctx context.Context, existing *T, v form.Values) error {
	if !s.setBusy(true) {
		return ErrBusy
	}
	defer s.setBusy(false)

	var base T
	if existing != nil {
		base = *existing
	}

	if up := s.cfg.Upload; up != nil {
		if fh, ok := v.File(up.Field); ok {
			if s.deps.Uploader == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "uploads are not configured")
			}
			url, err := s.deps.Uploader.Upload(ctx, up.Kind, fh)
			if err != nil {
				msg := publicMessage(err)
				s.formErrors(form.Errors{up.Field: msg})
				s.flash(FlashError, "Error al subir imagen: "+msg)
				return err
			}
			up.Apply(&base, url)
		}
	}

	item, err := s.cfg.FromValues(v, base)
	if err != nil {
		s.flash(FlashError, "Error: "+publicMessage(err))
		return err
	}

	var saved T
	if existing != nil {
		saved, err = s.svc.Update(ctx, s.cfg.ID(*existing), item)
	} else {
		saved, err = s.svc.Create(ctx, item)
	}
	if err != nil {
		s.deps.Logger.Error(s.deps.Logger.WithResource(ctx, s.cfg.Name), "save admin record", err)
		s.flash(FlashError, "Error: "+publicMessage(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing != nil {
		id := s.cfg.ID(*existing)
		for i := range s.items {
			if s.cfg.ID(s.items[i]) == id {
				s.items[i] = saved
			}
		}
		s.flashLocked(FlashSuccess, s.cfg.Noun+" actualizado exitosamente")
	} else {
		s.items = append(s.items, saved)
		s.flashLocked(FlashSuccess, s.cfg.Noun+" creado exitosamente")
	}
	s.closeLocked()
	return nil
}

// setBusy flips the busy flag; turning it on fails if it is already on.
func (s *Screen[T]) setBusy(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && s.busy {
		return false
	}
	s.busy = on
	return true
}

// Cancel is the form's cancel button.
func (s *Screen[T]) Cancel() {
	s.mu.Lock()
	ctrl := s.form
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.Cancel()
		return
	}
	s.requestClose()
}

// Dismiss is an overlay or close button click.
func (s *Screen[T]) Dismiss() { s.modal.Dismiss() }

// requestClose closes the modal unless an operation is in flight.
func (s *Screen[T]) requestClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return
	}
	s.closeLocked()
}

func (s *Screen[T]) closeLocked() {
	s.form = nil
	s.selected = nil
	s.modal.Close()
}

// Teardown releases the modal's document effects when the session goes away.
func (s *Screen[T]) Teardown() {
	s.mu.Lock()
	s.form = nil
	s.selected = nil
	s.mu.Unlock()
	s.modal.Teardown()
}

func (s *Screen[T]) flash(kind, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashLocked(kind, msg)
}

func (s *Screen[T]) flashLocked(kind, msg string) {
	s.flashes = append(s.flashes, Flash{Kind: kind, Message: msg})
}

func (s *Screen[T]) formErrors(errs form.Errors) {
	s.mu.Lock()
	ctrl := s.form
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.SetErrors(errs)
	}
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
