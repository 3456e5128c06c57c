package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efarmaplus/storefront/pkg/config"
)

func newTestCodec(t *testing.T) *SessionCodec {
	t.Helper()
	codec, err := NewSessionCodec(config.SessionConfig{
		CookieName: "efp_session",
		Secret:     "session-secret",
		MaxAge:     time.Hour,
	})
	require.NoError(t, err)
	return codec
}

func TestSessionCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	id, err := codec.Decode(codec.Encode("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	for _, bad := range []string{"", "abc", "abc.", ".sig", "abc.sig.extra", "abd." + codec.sign("abc")} {
		_, err := codec.Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidSession, bad)
	}

	other, err := NewSessionCodec(config.SessionConfig{Secret: "other"})
	require.NoError(t, err)
	_, err = other.Decode(codec.Encode("abc"))
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestNewSessionCodecRequiresSecret(t *testing.T) {
	_, err := NewSessionCodec(config.SessionConfig{})
	assert.Error(t, err)
}

func TestSessionMiddlewareIssuesAndKeepsIDs(t *testing.T) {
	codec := newTestCodec(t)
	var seen string
	handler := Session(codec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "efp_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, first, seen)
	assert.Empty(t, resp.Result().Cookies(), "valid cookie must not be reissued")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "efp_session", Value: first + ".forged"})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.NotEqual(t, first, seen, "tampered cookie must start a new session")
	assert.Len(t, resp.Result().Cookies(), 1)
}
