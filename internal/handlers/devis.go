package handlers

import (
	"context"
	"net/http"

	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/i18n"
	"github.com/mrs-ressorts/portail/internal/devis"
	"github.com/mrs-ressorts/portail/internal/middleware"
	"go.uber.org/zap"
)

// DevisLister lists the unified quote-request directory.
type DevisLister interface {
	List(ctx context.Context, q devis.Query) (devis.Page, error)
}

type DevisHandler struct {
	dir DevisLister
	log *zap.Logger
}

func NewDevisHandler(dir DevisLister, log *zap.Logger) *DevisHandler {
	return &DevisHandler{dir: dir, log: log}
}

// List serves GET /api/admin/devis?page=&limit=&type=&q=.
func (h *DevisHandler) List(w http.ResponseWriter, r *http.Request) {
	q := devis.ParseQuery(r.URL.Query())
	page, err := h.dir.List(r.Context(), q)
	if err != nil {
		h.log.Error("devis directory failed",
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.String("type", q.Type),
			zap.Error(err),
		)
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(middleware.LangFrom(r), "devis_list_failed"), nil)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{
		"page":  page.Page,
		"limit": page.Limit,
		"total": page.Total,
		"items": page.Items,
	})
}
