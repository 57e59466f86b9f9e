package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/dealdesk/backend/src/config"
	"github.com/username/dealdesk/backend/src/ledger"
	"github.com/username/dealdesk/backend/src/llm"
	"github.com/username/dealdesk/backend/src/logger"
	"github.com/username/dealdesk/backend/src/models"
	"github.com/username/dealdesk/backend/src/negotiation"
	"github.com/username/dealdesk/backend/src/utils"
	"github.com/username/dealdesk/backend/src/voice"
)

// RoundResult is the outcome of one negotiate round: the mail that went
// out and, when the supplier collaborator is configured, the simulated
// reply with its counter-offer.
type RoundResult struct {
	CustomerEmail models.EmailMessage  `json:"customer_email"`
	SupplierReply *models.EmailMessage `json:"supplier_reply,omitempty"`
}

// NegotiationService orchestrates the negotiation flow: the per-supplier
// state machine, the offer ledger, email dispatch, and the optional LLM
// and voice collaborators.
type NegotiationService struct {
	analysis AnalysisService
	ledger   *ledger.Ledger
	session  *negotiation.Session
	email    EmailService
	threads  *ThreadStore
	strategy *StrategyStore
	llm      *llm.Client
	voice    *voice.Client
}

func NewNegotiationService(
	analysis AnalysisService,
	ldg *ledger.Ledger,
	session *negotiation.Session,
	email EmailService,
	threads *ThreadStore,
	strategy *StrategyStore,
	llmClient *llm.Client,
	voiceClient *voice.Client,
) *NegotiationService {
	return &NegotiationService{
		analysis: analysis,
		ledger:   ldg,
		session:  session,
		email:    email,
		threads:  threads,
		strategy: strategy,
		llm:      llmClient,
		voice:    voiceClient,
	}
}

// Session exposes the session for handlers that render its state.
func (n *NegotiationService) Session() *negotiation.Session { return n.session }

// Strategy exposes the strategy artifact store.
func (n *NegotiationService) Strategy() *StrategyStore { return n.strategy }

// Threads exposes the email thread store.
func (n *NegotiationService) Threads() *ThreadStore { return n.threads }

// threadHistory renders a supplier's stored thread as chat history for
// the collaborator: our mails were its output, the supplier's its input.
func threadHistory(thread []models.EmailMessage) []llm.Message {
	history := make([]llm.Message, 0, len(thread))
	for _, msg := range thread {
		role := "user"
		if msg.Role == "customer" {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: msg.Body})
	}
	return history
}

// RequestOffer drives one supplier through idle -> drafting ->
// awaiting-response and sends the initial offer request.
func (n *NegotiationService) RequestOffer(supplier string) (*models.EmailMessage, error) {
	order, ok := n.session.Order()
	if !ok {
		return nil, fmt.Errorf("order details must be confirmed before requesting offers")
	}
	if err := n.session.Transition(supplier, negotiation.StageDrafting); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nwe are planning our next order of %s: %d units, to be delivered by %s. Please send us your current offer.\n\nBest regards,\n%s",
		supplier, n.session.Component, order.Quantity, utils.FormatDateLong(order.DeliveryDate), n.session.Customer)

	if err := n.email.SendNegotiationEmail(supplier, "Request for offer", body); err != nil {
		return nil, err
	}
	msg, err := n.threads.Append(supplier, "customer", body, nil)
	if err != nil {
		return nil, err
	}

	if err := n.session.Transition(supplier, negotiation.StageAwaitingResponse); err != nil {
		return nil, err
	}
	logger.L.Info("Offer request sent", "supplier", supplier, "quantity", order.Quantity)
	return msg, nil
}

// RecordCounterOffer appends the supplier's counter-offer to the ledger
// and thread. When the supplier was awaiting a response, it returns to
// idle so the operator can pick the next move.
func (n *NegotiationService) RecordCounterOffer(supplier string, price float64, body string) (*models.EmailMessage, error) {
	if err := n.ledger.RecordOffer(supplier, price); err != nil {
		return nil, err
	}
	var msg *models.EmailMessage
	if body != "" {
		var err error
		if msg, err = n.threads.Append(supplier, "supplier", body, &price); err != nil {
			return nil, err
		}
	}
	if n.session.Stage(supplier) == negotiation.StageAwaitingResponse {
		if err := n.session.Transition(supplier, negotiation.StageIdle); err != nil {
			return nil, err
		}
	}
	logger.L.Info("Counter-offer recorded", "supplier", supplier, "price", price)
	return msg, nil
}

// draftCustomerEmail produces the next customer mail: through the LLM
// collaborator when configured, a deterministic template otherwise.
func (n *NegotiationService) draftCustomerEmail(supplier string, accept bool) (string, error) {
	if n.llm.Enabled() && config.Cfg.CustomerEmailAgentID != "" {
		snap, err := n.analysis.Snapshot()
		if err != nil {
			return "", err
		}
		thread, err := n.threads.Thread(supplier)
		if err != nil {
			return "", err
		}
		body, _, err := n.llm.DraftCustomerEmail(config.Cfg.CustomerEmailAgentID, threadHistory(thread), snap, supplier, accept)
		if err == nil {
			return body, nil
		}
		logger.L.Warn("Customer email collaborator failed, falling back to template", "supplier", supplier, "error", err)
	}

	current, haveOffer := n.ledger.CurrentOffer(supplier)
	notes := n.ledger.LeverageNotes(supplier)
	if accept {
		if haveOffer {
			return fmt.Sprintf("Dear %s,\n\nwe accept your offer of %.2f per unit of %s. Please proceed with the order confirmation.\n\nBest regards,\n%s",
				supplier, current, n.session.Component, n.session.Customer), nil
		}
		return fmt.Sprintf("Dear %s,\n\nwe accept your terms for %s. Please proceed with the order confirmation.\n\nBest regards,\n%s",
			supplier, n.session.Component, n.session.Customer), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", supplier)
	if haveOffer {
		fmt.Fprintf(&b, "thank you for your offer of %.2f per unit of %s. We believe there is room to improve on the price.\n", current, n.session.Component)
	} else {
		fmt.Fprintf(&b, "we would like to discuss your pricing for %s.\n", n.session.Component)
	}
	if notes != "" {
		fmt.Fprintf(&b, "%s\n", notes)
	}
	fmt.Fprintf(&b, "\nWe look forward to your revised offer.\n\nBest regards,\n%s", n.session.Customer)
	return b.String(), nil
}

// Negotiate drives one counter-offer round for the supplier: draft, send,
// and, when the supplier collaborator is configured, obtain the simulated
// reply and record its counter-offer.
func (n *NegotiationService) Negotiate(supplier string) (*RoundResult, error) {
	if n.session.Stage(supplier) == negotiation.StageAwaitingResponse {
		if err := n.session.Transition(supplier, negotiation.StageIdle); err != nil {
			return nil, err
		}
	}
	if err := n.session.Transition(supplier, negotiation.StageDrafting); err != nil {
		return nil, err
	}

	body, err := n.draftCustomerEmail(supplier, false)
	if err != nil {
		return nil, err
	}
	if err := n.email.SendNegotiationEmail(supplier, "Counter-offer", body); err != nil {
		return nil, err
	}
	sent, err := n.threads.Append(supplier, "customer", body, nil)
	if err != nil {
		return nil, err
	}
	if err := n.session.Transition(supplier, negotiation.StageAwaitingResponse); err != nil {
		return nil, err
	}

	result := &RoundResult{CustomerEmail: *sent}

	if n.llm.Enabled() && config.Cfg.SupplierEmailAgentID != "" {
		snap, err := n.analysis.Snapshot()
		if err != nil {
			return nil, err
		}
		thread, err := n.threads.Thread(supplier)
		if err != nil {
			return nil, err
		}
		replyBody, offer, _, err := n.llm.SupplierReply(config.Cfg.SupplierEmailAgentID, threadHistory(thread), snap, false)
		if err != nil {
			logger.L.Warn("Supplier reply collaborator failed; round stays awaiting-response", "supplier", supplier, "error", err)
			return result, nil
		}
		reply, err := n.RecordCounterOffer(supplier, offer, replyBody)
		if err != nil {
			return nil, err
		}
		result.SupplierReply = reply
	}
	return result, nil
}

// Accept resolves the negotiation with the supplier at the current offer.
func (n *NegotiationService) Accept(supplier string) (*models.EmailMessage, error) {
	if n.session.Stage(supplier) == negotiation.StageIdle {
		if err := n.session.Transition(supplier, negotiation.StageDrafting); err != nil {
			return nil, err
		}
	}

	body, err := n.draftCustomerEmail(supplier, true)
	if err != nil {
		return nil, err
	}
	if err := n.email.SendNegotiationEmail(supplier, "Offer accepted", body); err != nil {
		return nil, err
	}
	msg, err := n.threads.Append(supplier, "customer", body, nil)
	if err != nil {
		return nil, err
	}

	if err := n.session.Transition(supplier, negotiation.StageResolved); err != nil {
		return nil, err
	}
	logger.L.Info("Negotiation resolved", "supplier", supplier)
	return msg, nil
}

// AnalyzeLeverage runs the leverage estimator, obtains per-supplier
// leverage notes (LLM collaborator or deterministic fallback), writes them
// into the ledger and refreshes the strategy artifact.
func (n *NegotiationService) AnalyzeLeverage() (map[string]string, *models.StrategyDocument, error) {
	signals, err := n.analysis.Signals()
	if err != nil {
		return nil, nil, err
	}

	notes := map[string]string{}
	if n.llm.Enabled() && config.Cfg.LeverageAnalyzerAgentID != "" {
		snap, err := n.analysis.Snapshot()
		if err != nil {
			return nil, nil, err
		}
		suppliers := make([]string, 0, len(signals))
		for _, sig := range signals {
			suppliers = append(suppliers, sig.Supplier)
		}
		order, _ := n.session.Order()
		analyzed, err := n.llm.AnalyzeLeverage(
			config.Cfg.LeverageAnalyzerAgentID, snap, suppliers,
			[2]float64{order.MinPrice, order.MaxPrice}, []int{order.Quantity})
		if err != nil {
			logger.L.Warn("Leverage collaborator failed, falling back to signal summary", "error", err)
		} else {
			notes = analyzed
		}
	}

	for _, sig := range signals {
		if _, ok := notes[sig.Supplier]; !ok {
			notes[sig.Supplier] = fallbackLeverageNote(sig)
		}
	}
	for supplier, note := range notes {
		if err := n.ledger.SetLeverageNotes(supplier, note); err != nil {
			return nil, nil, err
		}
	}

	doc, err := n.formalizeStrategy(signals, notes)
	if err != nil {
		return nil, nil, err
	}
	if err := n.strategy.Save(doc); err != nil {
		return nil, nil, err
	}
	return notes, doc, nil
}

func fallbackLeverageNote(sig models.LeverageSignal) string {
	switch {
	case sig.PeriodsUsed == 0:
		return "Not enough joined price and cost history to assess margin development."
	case sig.Signal > 0:
		return fmt.Sprintf("Over the last %d comparable periods the price grew %.1f%% ahead of the underlying costs. That margin expansion supports pushing for a lower price.",
			sig.PeriodsUsed, sig.Signal*100)
	default:
		return fmt.Sprintf("Over the last %d comparable periods the price stayed %.1f%% behind the underlying cost development. Price pressure has limited room here.",
			sig.PeriodsUsed, -sig.Signal*100)
	}
}

// formalizeStrategy turns the analysis into an ordered strategy document,
// through the collaborator when configured, else by descending signal.
func (n *NegotiationService) formalizeStrategy(signals []models.LeverageSignal, notes map[string]string) (*models.StrategyDocument, error) {
	if n.llm.Enabled() && config.Cfg.StrategyFormalizerAgentID != "" {
		snap, err := n.analysis.Snapshot()
		if err != nil {
			return nil, err
		}
		doc, err := n.llm.FormalizeStrategy(config.Cfg.StrategyFormalizerAgentID, snap)
		if err == nil {
			return doc, nil
		}
		logger.L.Warn("Strategy collaborator failed, falling back to signal ordering", "error", err)
	}

	ordered := append([]models.LeverageSignal(nil), signals...)
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].Signal > ordered[b].Signal })

	doc := &models.StrategyDocument{Title: fmt.Sprintf("Negotiation strategy for %s", n.session.Component)}
	for _, sig := range ordered {
		doc.Steps = append(doc.Steps, models.StrategyStep{
			Action:   fmt.Sprintf("Negotiate with %s", sig.Supplier),
			Leverage: notes[sig.Supplier],
		})
	}
	return doc, nil
}

// PrepareCall summarizes the supplier's email thread and pushes it into
// the voice agent's knowledge base. It returns the voice agent id for the
// caller to start the call with.
func (n *NegotiationService) PrepareCall(supplier string) (string, error) {
	if !n.voice.Enabled() {
		return "", fmt.Errorf("voice collaborator not configured")
	}
	thread, err := n.threads.Thread(supplier)
	if err != nil {
		return "", err
	}
	if len(thread) == 0 {
		return "", fmt.Errorf("no email thread with %s to brief the call from", supplier)
	}

	summary := ""
	if n.llm.Enabled() && config.Cfg.CustomerEmailAgentID != "" {
		summary, err = n.llm.SummarizeThread(config.Cfg.CustomerEmailAgentID, thread)
		if err != nil {
			logger.L.Warn("Thread summary collaborator failed, falling back to raw thread", "supplier", supplier, "error", err)
			summary = ""
		}
	}
	if summary == "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Negotiation history with %s about %s:\n\n", supplier, n.session.Component)
		for _, msg := range thread {
			fmt.Fprintf(&b, "[%s] %s\n\n", msg.Role, msg.Body)
		}
		if current, ok := n.ledger.CurrentOffer(supplier); ok {
			fmt.Fprintf(&b, "The negotiation currently stands at %.2f per unit.\n", current)
		}
		summary = b.String()
	}

	if err := n.voice.ReplaceContext("history.txt", []byte(summary)); err != nil {
		return "", err
	}
	return n.voice.AgentID(), nil
}
