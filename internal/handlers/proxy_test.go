package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingForwarder struct {
	paths []string
}

func (f *recordingForwarder) Forward(w http.ResponseWriter, _ *http.Request, path string) {
	f.paths = append(f.paths, path)
	w.WriteHeader(http.StatusAccepted)
}

func TestProxyHandler_Routes(t *testing.T) {
	fwd := &recordingForwarder{}
	h := NewProxyHandler(fwd)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/devis/{type}/{id}/pdf", h.WithKind(h.To("/api/admin/devis/{type}/{id}/pdf")))
	mux.HandleFunc("GET /api/admin/devis/numero/{numero}/pdf", h.To("/api/admin/devis/numero/{numero}/pdf"))
	mux.HandleFunc("POST /api/devis/{type}", h.WithKind(h.Pass))
	mux.HandleFunc("GET /api/client/orders", h.Pass)

	cases := []struct {
		method, path string
		status       int
		forwarded    string
	}{
		{http.MethodGet, "/api/admin/devis/Grille/abc/pdf", http.StatusAccepted, "/api/admin/devis/grille/abc/pdf"},
		{http.MethodGet, "/api/admin/devis/ressort/abc/pdf", http.StatusBadRequest, ""},
		{http.MethodGet, "/api/admin/devis/numero/DV%2F01/pdf", http.StatusAccepted, "/api/admin/devis/numero/DV%2F01/pdf"},
		{http.MethodPost, "/api/devis/fil", http.StatusAccepted, "/api/devis/fil"},
		{http.MethodPost, "/api/devis/unknown", http.StatusBadRequest, ""},
		{http.MethodGet, "/api/client/orders", http.StatusAccepted, "/api/client/orders"},
	}
	for _, c := range cases {
		fwd.paths = nil
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(c.method, c.path, nil))
		if rr.Code != c.status {
			t.Errorf("%s %s: status %d, want %d", c.method, c.path, rr.Code, c.status)
		}
		if c.forwarded == "" {
			if len(fwd.paths) != 0 {
				t.Errorf("%s %s: should not be forwarded", c.method, c.path)
			}
			continue
		}
		if len(fwd.paths) != 1 || fwd.paths[0] != c.forwarded {
			t.Errorf("%s %s: forwarded %v, want %s", c.method, c.path, fwd.paths, c.forwarded)
		}
	}
}
