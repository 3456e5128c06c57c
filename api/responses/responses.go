package responses

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteError writes err as a JSON error envelope.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta, msg := classify(err)

	payload := ErrorEnvelope{
		Error: ErrorBody{
			Code:      string(typed.Code()),
			Message:   msg,
			RequestID: w.Header().Get(RequestIDHeader),
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logError(ctx, logg, err)
	writeJSON(w, meta.HTTPStatus, payload)
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>{{.Status}} · eFarmaPlus</title></head>
<body>
<main class="error-page">
<h1>{{.Status}}</h1>
<p class="error-message">{{.Message}}</p>
<a href="/">Volver al inicio</a>
</main>
</body>
</html>
`))

// WriteHTMLError renders err as a minimal HTML page for browser routes.
func WriteHTMLError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	_, meta, msg := classify(err)
	logError(ctx, logg, err)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(meta.HTTPStatus)
	view := struct {
		Status  int
		Message string
	}{meta.HTTPStatus, msg}
	if execErr := errorPage.Execute(w, view); execErr != nil {
		log.Printf(`{"level":"error","msg":"failed to render error page","err":"%v"}`, execErr)
	}
}

// Write picks the JSON or HTML rendition based on the request.
func Write(logg *logger.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if WantsJSON(r) {
		WriteError(r.Context(), logg, w, err)
		return
	}
	WriteHTMLError(r.Context(), logg, w, err)
}

// WantsJSON reports whether the caller is an API client rather than a browser page.
func WantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Redirect sends the browser to target with a GET, the post/redirect/get step
// after every form submission.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// WriteHTML writes an already rendered page.
func WriteHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf(`{"level":"error","msg":"failed to write html response","err":"%v"}`, err)
	}
}

func classify(err error) (*pkgerrors.Error, pkgerrors.Metadata, string) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeUnsupported,
		pkgerrors.CodeTooLarge:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}
	return typed, meta, msg
}

func logError(ctx context.Context, logg *logger.Logger, err error) {
	if logg == nil || err == nil {
		return
	}
	ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	if typed := pkgerrors.As(err); typed != nil && pkgerrors.MetadataFor(typed.Code()).HTTPStatus < http.StatusInternalServerError {
		logg.Warn(ctx, "request.rejected")
		return
	}
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
