package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"github.com/mrs-ressorts/portail/internal/backend"
	"github.com/mrs-ressorts/portail/internal/devis"
	"github.com/mrs-ressorts/portail/internal/middleware"
)

// Forwarder relays a request to a backend path.
type Forwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, path string)
}

var _ Forwarder = (*backend.Client)(nil)

// ProxyHandler serves the routes the backend API answers on its own.
type ProxyHandler struct {
	backend Forwarder
}

func NewProxyHandler(b Forwarder) *ProxyHandler {
	return &ProxyHandler{backend: b}
}

// Pass forwards the request to the same path on the backend.
func (h *ProxyHandler) Pass(w http.ResponseWriter, r *http.Request) {
	h.backend.Forward(w, r, r.URL.EscapedPath())
}

// To forwards to a backend path template whose {name} segments are filled
// from the request's path values.
func (h *ProxyHandler) To(template string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.backend.Forward(w, r, expand(template, r))
	}
}

// WithKind rejects requests whose {type} is not a known kind, then calls
// next. The value is lower-cased in place.
func (h *ProxyHandler) WithKind(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := devis.ParseKind(r.PathValue("type"))
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, i18n.T(middleware.LangFrom(r), "invalid_type"), nil)
			return
		}
		r.SetPathValue("type", string(kind))
		next(w, r)
	}
}

func expand(template string, r *http.Request) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}
		b.WriteString(template[:open])
		b.WriteString(url.PathEscape(r.PathValue(template[open+1 : open+end])))
		template = template[open+end+1:]
	}
}
