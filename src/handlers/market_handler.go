package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/negotiation"
	"github.com/username/dealdesk/backend/src/services"
	"github.com/username/dealdesk/backend/src/utils"
)

// sendDomainError maps the domain error taxonomy onto HTTP statuses.
func sendDomainError(w http.ResponseWriter, err error) {
	var noBaseline *models.NoBaselineError
	var missingRef *models.MissingReferencePointError
	var unknownTier *models.UnknownTierError
	var badTransition *negotiation.InvalidTransitionError

	switch {
	case errors.As(err, &noBaseline):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &missingRef), errors.As(err, &unknownTier):
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &badTransition):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	default:
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

type MarketHandler struct {
	analysisService services.AnalysisService
}

func NewMarketHandler(analysisService services.AnalysisService) *MarketHandler {
	return &MarketHandler{analysisService: analysisService}
}

// HandleGetBriefing serves the market view: baseline purchase, weights,
// trend projection and market comparison.
func (h *MarketHandler) HandleGetBriefing(w http.ResponseWriter, r *http.Request) {
	briefing, err := h.analysisService.MarketBriefing()
	if err != nil {
		logger.L.Warn("Market briefing failed", "error", err)
		sendDomainError(w, err)
		return
	}

	etag, err := utils.GenerateETag(briefing)
	if err == nil {
		quoted := fmt.Sprintf("%q", etag)
		if r.Header.Get("If-None-Match") == quoted {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", quoted)
	}
	utils.SendJSON(w, briefing, http.StatusOK)
}
