package modal

import "sync"

// KeyEscape is the dismissal key.
const KeyEscape = "Escape"

// Document is the page-wide state modals share: the body scroll lock and the
// keydown listeners. One Document exists per rendered page.
type Document struct {
	mu        sync.Mutex
	locks     int
	nextID    uint64
	listeners map[uint64]func(key string)
}

func NewDocument() *Document {
	return &Document{listeners: map[uint64]func(string){}}
}

// ScrollLocked reports whether any lease holds the scroll lock.
func (d *Document) ScrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locks > 0
}

// BodyOverflow is the CSS overflow value for the body element.
func (d *Document) BodyOverflow() string {
	if d.ScrollLocked() {
		return "hidden"
	}
	return "auto"
}

// Listeners reports how many key listeners are registered.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// PressKey delivers a keydown to every registered listener. Listeners run
// outside the document lock and may release their own lease.
func (d *Document) PressKey(key string) {
	d.mu.Lock()
	fns := make([]func(string), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Lease is a held scroll lock plus key listener. Release is idempotent.
type Lease struct {
	once    sync.Once
	release func()
}

// Release gives back the scroll lock and unregisters the listener. Only the
// first call has an effect.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(l.release)
}

// Acquire engages the scroll lock and registers onKey until the lease is released.
func (d *Document) Acquire(onKey func(key string)) *Lease {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locks++
	d.nextID++
	id := d.nextID
	if onKey != nil {
		d.listeners[id] = onKey
	}
	return &Lease{release: func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.locks > 0 {
			d.locks--
		}
		delete(d.listeners, id)
	}}
}
