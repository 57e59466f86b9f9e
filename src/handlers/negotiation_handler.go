package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/dealdesk/backend/src/ledger"
	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/negotiation"
	"github.com/username/dealdesk/backend/src/services"
	"github.com/username/dealdesk/backend/src/utils"
)

type NegotiationHandler struct {
	analysisService    services.AnalysisService
	negotiationService *services.NegotiationService
	ledger             *ledger.Ledger
}

func NewNegotiationHandler(
	analysisService services.AnalysisService,
	negotiationService *services.NegotiationService,
	ldg *ledger.Ledger,
) *NegotiationHandler {
	return &NegotiationHandler{
		analysisService:    analysisService,
		negotiationService: negotiationService,
		ledger:             ldg,
	}
}

type negotiationRow struct {
	Supplier      string                `json:"supplier"`
	Offer         *float64              `json:"offer,omitempty"`
	Trail         []float64             `json:"trail"`
	LeverageNotes string                `json:"leverage,omitempty"`
	Score         *models.SupplierScore `json:"score,omitempty"`
	Stage         negotiation.Stage     `json:"stage"`
}

type negotiationOverview struct {
	Rows     []negotiationRow         `json:"rows"`
	Strategy *models.StrategyDocument `json:"strategy,omitempty"`
}

// HandleGetOverview serves the merged negotiation table: offer, trail,
// leverage notes, score and stage per supplier, plus the strategy
// artifact if one exists.
func (h *NegotiationHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	scores, err := h.analysisService.Scores()
	if err != nil {
		sendDomainError(w, err)
		return
	}
	scoreBySupplier := make(map[string]models.SupplierScore, len(scores))
	for _, score := range scores {
		scoreBySupplier[score.Supplier] = score
	}

	session := h.negotiationService.Session()
	var rows []negotiationRow
	for _, offer := range h.ledger.Snapshot() {
		row := negotiationRow{
			Supplier:      offer.Supplier,
			Offer:         offer.Price,
			Trail:         h.ledger.Trail(offer.Supplier),
			LeverageNotes: offer.LeverageNotes,
			Stage:         session.Stage(offer.Supplier),
		}
		if score, ok := scoreBySupplier[offer.Supplier]; ok {
			row.Score = &score
		}
		rows = append(rows, row)
	}

	strategy, err := h.negotiationService.Strategy().Load()
	if err != nil {
		logger.L.Warn("Failed to load strategy artifact", "error", err)
	}
	utils.SendJSON(w, negotiationOverview{Rows: rows, Strategy: strategy}, http.StatusOK)
}

type recordOfferRequest struct {
	Supplier string  `json:"supplier"`
	Price    float64 `json:"price"`
	Body     string  `json:"body"`
}

// HandleRecordOffer records a counter-offer received outside the
// simulated email flow (e.g. relayed by the operator after a call).
func (h *NegotiationHandler) HandleRecordOffer(w http.ResponseWriter, r *http.Request) {
	var req recordOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Supplier == "" {
		utils.SendJSONError(w, "supplier is required", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 {
		utils.SendJSONError(w, "price must be positive", http.StatusBadRequest)
		return
	}

	msg, err := h.negotiationService.RecordCounterOffer(req.Supplier, req.Price, req.Body)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	resp := map[string]interface{}{
		"supplier": req.Supplier,
		"trail":    h.ledger.Trail(req.Supplier),
	}
	if msg != nil {
		resp["message"] = msg
	}
	utils.SendJSON(w, resp, http.StatusOK)
}

// HandleAccept resolves the negotiation with the supplier.
func (h *NegotiationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	supplier := r.PathValue("supplier")
	if supplier == "" {
		utils.SendJSONError(w, "supplier path parameter required", http.StatusBadRequest)
		return
	}
	msg, err := h.negotiationService.Accept(supplier)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, msg, http.StatusOK)
}

// HandleNegotiate runs one counter-offer round with the supplier.
func (h *NegotiationHandler) HandleNegotiate(w http.ResponseWriter, r *http.Request) {
	supplier := r.PathValue("supplier")
	if supplier == "" {
		utils.SendJSONError(w, "supplier path parameter required", http.StatusBadRequest)
		return
	}
	result, err := h.negotiationService.Negotiate(supplier)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleAnalyzeLeverage runs the leverage analysis, writes the notes into
// the ledger and refreshes the strategy artifact.
func (h *NegotiationHandler) HandleAnalyzeLeverage(w http.ResponseWriter, r *http.Request) {
	notes, strategy, err := h.negotiationService.AnalyzeLeverage()
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, map[string]interface{}{
		"leverages": notes,
		"strategy":  strategy,
	}, http.StatusOK)
}

// HandleGetStrategy serves the stored strategy artifact.
func (h *NegotiationHandler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	strategy, err := h.negotiationService.Strategy().Load()
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if strategy == nil {
		utils.SendJSONError(w, "no strategy has been formalized yet", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, strategy, http.StatusOK)
}

// HandlePutStrategy replaces the strategy artifact with the operator's
// edited version.
func (h *NegotiationHandler) HandlePutStrategy(w http.ResponseWriter, r *http.Request) {
	var doc models.StrategyDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.negotiationService.Strategy().Save(&doc); err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, doc, http.StatusOK)
}

type callRequest struct {
	Supplier string `json:"supplier"`
}

// HandleCall briefs the voice agent with the supplier's thread summary
// and returns the agent id the caller dials into.
func (h *NegotiationHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Supplier == "" {
		utils.SendJSONError(w, "supplier is required", http.StatusBadRequest)
		return
	}

	agentID, err := h.negotiationService.PrepareCall(req.Supplier)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, map[string]string{"voice_agent_id": agentID}, http.StatusOK)
}

// HandleGetThread serves the supplier's stored email thread.
func (h *NegotiationHandler) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	supplier := r.PathValue("supplier")
	if supplier == "" {
		utils.SendJSONError(w, "supplier path parameter required", http.StatusBadRequest)
		return
	}
	thread, err := h.negotiationService.Threads().Thread(supplier)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"supplier": supplier, "thread": thread}, http.StatusOK)
}
