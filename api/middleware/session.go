package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/logger"
)

var ErrInvalidSession = errors.New("invalid session cookie")

// SessionCodec signs the session id kept in the browser cookie. The value
// format is id.base64(hmac(id)).
type SessionCodec struct {
	secret []byte
	name   string
	secure bool
	maxAge time.Duration
}

func NewSessionCodec(cfg config.SessionConfig) (*SessionCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	name := cfg.CookieName
	if name == "" {
		name = "efp_session"
	}
	return &SessionCodec{secret: []byte(cfg.Secret), name: name, secure: cfg.Secure, maxAge: cfg.MaxAge}, nil
}

func (c *SessionCodec) Encode(id string) string {
	return id + "." + c.sign(id)
}

func (c *SessionCodec) Decode(v string) (string, error) {
	id, sig, ok := strings.Cut(v, ".")
	if !ok || id == "" || strings.Contains(sig, ".") {
		return "", ErrInvalidSession
	}
	if !hmac.Equal([]byte(c.sign(id)), []byte(sig)) {
		return "", ErrInvalidSession
	}
	return id, nil
}

// Read returns the verified session id carried by the request, if any.
func (c *SessionCodec) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := c.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func (c *SessionCodec) Set(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    c.Encode(id),
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *SessionCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Session guarantees every request carries a session id. Missing or tampered
// cookies are replaced by a fresh id, which starts an empty cart.
func Session(codec *SessionCodec, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := codec.Read(r)
			if !ok {
				id = uuid.NewString()
				codec.Set(w, id)
			}

			ctx := WithSessionID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
