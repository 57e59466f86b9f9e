package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/username/dealdesk/backend/src/agent"
	"github.com/username/dealdesk/backend/src/models"
)

var leverageSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"leverages_per_supplier": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"supplier": {"type": "string"},
					"leverage": {"type": "string"}
				},
				"required": ["supplier", "leverage"]
			}
		}
	},
	"additionalProperties": false,
	"required": ["leverages_per_supplier"]
}`)

var strategySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"strategy": {
			"type": "object",
			"properties": {
				"title": {"type": "string"},
				"steps": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"action": {"type": "string"},
							"leverage": {"type": "string"}
						},
						"required": ["action", "leverage"]
					}
				}
			},
			"required": ["title", "steps"]
		}
	},
	"additionalProperties": false,
	"required": ["strategy"]
}`)

// AnalyzeLeverage asks the leverage-analyzer agent for per-supplier
// leverage arguments, grounding every data request through the capability
// dispatch table.
func (c *Client) AnalyzeLeverage(agentID string, snap *agent.Snapshot, suppliers []string, priceRange [2]float64, volumes []int) (map[string]string, error) {
	opening := fmt.Sprintf(
		"our order is: acceptable price range: [%.0f,%.0f], volumes %v, and our companies of interest are: %s. Could you help us with leveraging?",
		priceRange[0], priceRange[1], volumes, strings.Join(suppliers, ", "))

	content, _, err := c.RunAgentLoop(agentID, []Message{{Role: "user", Content: opening}}, snap, "response", leverageSchema)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		LeveragesPerSupplier []struct {
			Supplier string `json:"supplier"`
			Leverage string `json:"leverage"`
		} `json:"leverages_per_supplier"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decoding leverage analysis: %w", err)
	}

	notes := make(map[string]string, len(parsed.LeveragesPerSupplier))
	for _, entry := range parsed.LeveragesPerSupplier {
		notes[entry.Supplier] = entry.Leverage
	}
	return notes, nil
}

// FormalizeStrategy asks the strategy-formalizer agent to turn the offer
// and leverage data into an ordered negotiation strategy.
func (c *Client) FormalizeStrategy(agentID string, snap *agent.Snapshot) (*models.StrategyDocument, error) {
	opening := "Please read in the offer and leverage data and create a strategy formulization based on your system prompt and the data you read in."

	content, _, err := c.RunAgentLoop(agentID, []Message{{Role: "user", Content: opening}}, snap, "response", strategySchema)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Strategy models.StrategyDocument `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decoding strategy document: %w", err)
	}
	return &parsed.Strategy, nil
}

var emailSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"email": {"type": "string"}
	},
	"additionalProperties": false,
	"required": ["email"]
}`)

var supplierReplySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"email": {"type": "string"},
		"offer": {"type": "number"}
	},
	"additionalProperties": false,
	"required": ["email", "offer"]
}`)

// DraftCustomerEmail asks the customer email agent to draft the next mail
// in the supplier's thread. The caller owns thread persistence.
func (c *Client) DraftCustomerEmail(agentID string, history []Message, snap *agent.Snapshot, supplier string, accept bool) (string, []Message, error) {
	instruction := "You should do a counteroffer."
	if accept {
		instruction = "You should accept the offer."
	}
	var prompt string
	if len(history) > 0 {
		prompt = fmt.Sprintf("The supplier %s should be contacted again. The supplier name you should focus on is %s.\n%s\nPlease read in the offer and leverage data.\nWrite an email adhering to the given data and your system prompt. The email is an answer to the previous email.",
			supplier, supplier, instruction)
	} else {
		prompt = fmt.Sprintf("The supplier name you should focus on is %s.\n%s\nPlease read in the offer and leverage data.\nWrite an email adhering to the given data and your system prompt.",
			supplier, instruction)
	}
	history = append(history, Message{Role: "user", Content: prompt})

	content, history, err := c.RunAgentLoop(agentID, history, snap, "response", emailSchema)
	if err != nil {
		return "", history, err
	}

	var parsed struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", history, fmt.Errorf("decoding email draft: %w", err)
	}
	return parsed.Email, history, nil
}

// SupplierReply asks the supplier email agent for the counterpart's reply
// and the counter-offer it carries.
func (c *Client) SupplierReply(agentID string, history []Message, snap *agent.Snapshot, accept bool) (string, float64, []Message, error) {
	instruction := "Do a counteroffer."
	if accept {
		instruction = "Accept the offer."
	}
	history = append(history, Message{
		Role:    "user",
		Content: fmt.Sprintf("You got an email from the customer. %s Base your reply on the email thread given in the chat history. The email is an answer to the previous email. Do also return the offer amount.", instruction),
	})

	content, history, err := c.RunAgentLoop(agentID, history, snap, "response", supplierReplySchema)
	if err != nil {
		return "", 0, history, err
	}

	var parsed struct {
		Email string  `json:"email"`
		Offer float64 `json:"offer"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", 0, history, fmt.Errorf("decoding supplier reply: %w", err)
	}
	return parsed.Email, parsed.Offer, history, nil
}

// SummarizeThread condenses a negotiation email thread into a short
// context blurb, used to brief the voice agent before a call.
func (c *Client) SummarizeThread(agentID string, thread []models.EmailMessage) (string, error) {
	var b strings.Builder
	for _, msg := range thread {
		fmt.Fprintf(&b, "[%s] %s\n", msg.Role, msg.Body)
		if msg.Offer != nil {
			fmt.Fprintf(&b, "(offer: %.2f)\n", *msg.Offer)
		}
	}
	prompt := "Summarize this negotiation email thread in a few sentences and emphasize at which price the negotiation is left:\n" + b.String()

	content, _, err := c.RunAgentLoop(agentID, []Message{{Role: "user", Content: prompt}}, nil, "", nil)
	if err != nil {
		return "", err
	}
	return content, nil
}
