package modal

import (
	"html/template"
	"io"
	"strings"
	"sync"
)

// Size selects the modal width class.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Config describes a modal. OnClose is asked to close the modal on dismissal
// (overlay click, close button, Escape); it decides whether to call Close.
// Without OnClose dismissals close the modal directly.
type Config struct {
	Title   string
	Size    Size
	OnClose func()
}

// Modal is a closed/open dialog bound to a Document. While open it holds a
// lease on the document's scroll lock and Escape listener; every way out
// (Close, Teardown) releases that lease exactly once.
type Modal struct {
	mu    sync.Mutex
	doc   *Document
	cfg   Config
	open  bool
	lease *Lease
}

func New(doc *Document, cfg Config) *Modal {
	if cfg.Size == "" {
		cfg.Size = SizeMedium
	}
	return &Modal{doc: doc, cfg: cfg}
}

// SetTitle changes the title shown in the header.
func (m *Modal) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Title = title
}

// Title returns the current header text.
func (m *Modal) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Title
}

// IsOpen reports the modal state.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Open transitions to open and engages the side effects. Opening an open
// modal keeps it open and re-engages them with a fresh lease.
func (m *Modal) Open() {
	m.mu.Lock()
	old := m.lease
	m.open = true
	m.lease = m.doc.Acquire(m.onKey)
	m.mu.Unlock()
	old.Release()
}

// Close transitions to closed and releases the side effects.
func (m *Modal) Close() {
	m.mu.Lock()
	lease := m.lease
	m.open = false
	m.lease = nil
	m.mu.Unlock()
	lease.Release()
}

// Teardown is the unmount path: it releases the side effects whatever the
// state. The modal may be reopened afterwards.
func (m *Modal) Teardown() {
	m.Close()
}

// Dismiss is a user request to close (close button, overlay, Escape).
func (m *Modal) Dismiss() {
	if !m.IsOpen() {
		return
	}
	if m.cfg.OnClose != nil {
		m.cfg.OnClose()
		return
	}
	m.Close()
}

// ClickOverlay handles a click that landed on the backdrop.
func (m *Modal) ClickOverlay() {
	m.Dismiss()
}

// ClickBody handles a click inside the dialog. It stops there and never
// reaches the overlay.
func (m *Modal) ClickBody() (propagated bool) {
	return false
}

func (m *Modal) onKey(key string) {
	if key == KeyEscape {
		m.Dismiss()
	}
}

// RenderOptions carries the dismissal endpoint.
type RenderOptions struct {
	// DismissURL receives overlay and close button clicks.
	DismissURL string
}

type modalView struct {
	Title      string
	Size       Size
	Body       template.HTML
	DismissURL string
}

var modalTemplate = template.Must(template.New("modal").Parse(`<div class="modal-root">
<form method="post" action="{{.DismissURL}}" class="modal-overlay"><button type="submit" class="modal-overlay-hit" aria-label="Cerrar modal"></button></form>
<div class="modal-content modal-{{.Size}}" role="dialog" aria-modal="true">
<div class="modal-header">
<h2 class="modal-title">{{.Title}}</h2>
<form method="post" action="{{.DismissURL}}"><button type="submit" class="modal-close" aria-label="Cerrar modal">&#x2715;</button></form>
</div>
<div class="modal-body">{{.Body}}</div>
</div>
</div>
`))

// Render writes the dialog around body. A closed modal renders nothing. The
// dialog content is a sibling of the overlay, not a child, so clicks inside
// it cannot reach the overlay's dismissal form.
func (m *Modal) Render(w io.Writer, body template.HTML, opts RenderOptions) error {
	m.mu.Lock()
	view := modalView{Title: m.cfg.Title, Size: m.cfg.Size, Body: body, DismissURL: opts.DismissURL}
	open := m.open
	m.mu.Unlock()
	if !open {
		return nil
	}
	return modalTemplate.Execute(w, view)
}

// HTML renders into a template fragment.
func (m *Modal) HTML(body template.HTML, opts RenderOptions) (template.HTML, error) {
	var b strings.Builder
	if err := m.Render(&b, body, opts); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
