package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/negotiation"
	"github.com/username/dealdesk/backend/src/services"
	"github.com/username/dealdesk/backend/src/utils"
)

type SupplierHandler struct {
	analysisService    services.AnalysisService
	negotiationService *services.NegotiationService
}

func NewSupplierHandler(analysisService services.AnalysisService, negotiationService *services.NegotiationService) *SupplierHandler {
	return &SupplierHandler{
		analysisService:    analysisService,
		negotiationService: negotiationService,
	}
}

type supplierRow struct {
	services.SupplierEntry
	Score models.SupplierScore `json:"score"`
	Stage negotiation.Stage    `json:"stage"`
}

// HandleGetSuppliers serves the supplier overview: profile, last price
// from past orders, current score triple and negotiation stage.
func (h *SupplierHandler) HandleGetSuppliers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.analysisService.Suppliers()
	if err != nil {
		sendDomainError(w, err)
		return
	}
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
	rows := make([]supplierRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, supplierRow{
			SupplierEntry: entry,
			Score:         scoreBySupplier[entry.Profile.Supplier],
			Stage:         session.Stage(entry.Profile.Supplier),
		})
	}
	utils.SendJSON(w, map[string]interface{}{"suppliers": rows}, http.StatusOK)
}

type orderRequest struct {
	Quantity     int     `json:"quantity"`
	DeliveryDate string  `json:"delivery_date"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// HandleSetOrder records the operator's confirmed order details for the
// current session.
func (h *SupplierHandler) HandleSetOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		utils.SendJSONError(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	deliveryDate := utils.ParseDate(req.DeliveryDate)
	if deliveryDate.IsZero() {
		utils.SendJSONError(w, fmt.Sprintf("invalid delivery_date %q, expected %s", req.DeliveryDate, utils.DefaultDateFormat), http.StatusBadRequest)
		return
	}
	if req.MinPrice < 0 || req.MaxPrice < req.MinPrice {
		utils.SendJSONError(w, "price range must satisfy 0 <= min_price <= max_price", http.StatusBadRequest)
		return
	}

	order := negotiation.OrderDetails{
		Quantity:     req.Quantity,
		DeliveryDate: deliveryDate,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
	}
	h.negotiationService.Session().SetOrder(order)
	logger.L.Info("Order details confirmed", "quantity", order.Quantity, "deliveryDate", utils.FormatDate(order.DeliveryDate))
	utils.SendJSON(w, order, http.StatusOK)
}

// HandleRequestOffer sends the initial offer request to one supplier.
func (h *SupplierHandler) HandleRequestOffer(w http.ResponseWriter, r *http.Request) {
	supplier := r.PathValue("supplier")
	if supplier == "" {
		utils.SendJSONError(w, "supplier path parameter required", http.StatusBadRequest)
		return
	}

	msg, err := h.negotiationService.RequestOffer(supplier)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	utils.SendJSON(w, msg, http.StatusOK)
}
