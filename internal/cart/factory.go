package cart

import (
	"context"

	"github.com/efarmaplus/storefront/pkg/logger"
)

// Factory hydrates a per-session engine on demand. Engines are cheap and
// short-lived; the store is the source of truth between requests.
type Factory struct {
	store     Store
	namespace string
	opts      []Option
}

func NewFactory(store Store, namespace string, logg *logger.Logger, rec Recorder) *Factory {
	return &Factory{
		store:     store,
		namespace: namespace,
		opts:      []Option{WithLogger(logg), WithRecorder(rec)},
	}
}

// ForSession loads the cart owned by sessionID.
func (f *Factory) ForSession(ctx context.Context, sessionID string) *Engine {
	return New(ctx, f.store, SessionKey(f.namespace, sessionID), f.opts...)
}
