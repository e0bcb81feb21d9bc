package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
	"github.com/dropDatabas3/clickauth/internal/linker"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

type DisconnectController struct {
	repo repository.AccountRepository
}

// Disconnect maneja GET /api/disconnect/{platform} (requiere auth).
// Responde {ok, message} con el nombre del resultado.
func (c *DisconnectController) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a := mw.CurrentAccount(ctx)
	if a == nil {
		httperrors.WriteError(w, r, httperrors.ErrUnauthorized)
		return
	}
	platform := chi.URLParam(r, "platform")

	result := linker.TryDisconnect(a, platform)
	if a.IsChanged() {
		if err := c.repo.Save(ctx, a); err != nil {
			httperrors.WriteError(w, r, err)
			return
		}
	}
	logger.From(ctx).Info("disconnect platform",
		logger.Provider(platform),
		logger.String("result", result.String()),
	)
	helpers.WriteJSON(w, http.StatusOK, helpers.OK{OK: result == linker.Disconnected, Message: result.String()})
}
