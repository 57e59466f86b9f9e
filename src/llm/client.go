// Package llm is a thin client for the hosted Mistral agents API. Calls
// are opaque, blocking and synchronous; retry and timeout policy beyond
// the client timeout is the hosted service's concern.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/username/dealdesk/backend/src/agent"
	"github.com/username/dealdesk/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

const defaultMaxIterations = 30

// Message is one chat turn on the agents API.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a tool invocation requested by the agent.
type ToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type toolSpec struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type completionRequest struct {
	AgentID        string          `json:"agent_id"`
	Messages       []Message       `json:"messages"`
	Stream         bool            `json:"stream"`
	Tools          []toolSpec      `json:"tools,omitempty"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to the Mistral agents completion endpoint.
type Client struct {
	httpClient http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds the client with a cookie jar, matching how the other
// outbound HTTP clients in this codebase are constructed.
func NewClient(baseURL, apiKey string) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	return &Client{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Enabled reports whether the collaborator is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// complete performs one agents-completion round trip.
func (c *Client) complete(req completionRequest) (*Message, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling agent request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v1/agents/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling agents API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("agents API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding agents response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("agents API returned no choices")
	}
	return &out.Choices[0].Message, nil
}

// capabilityTools renders the capability enumeration as the API's tool
// specification list.
func capabilityTools() []toolSpec {
	emptyParams := json.RawMessage(`{"type":"object","properties":{},"required":[]}`)
	specs := make([]toolSpec, 0, len(agent.All))
	for _, c := range agent.All {
		var spec toolSpec
		spec.Type = "function"
		spec.Function.Name = c.Name()
		spec.Function.Description = c.Description()
		spec.Function.Parameters = emptyParams
		specs = append(specs, spec)
	}
	return specs
}

// jsonSchemaFormat wraps a schema for the response_format field.
func jsonSchemaFormat(name string, schema json.RawMessage) json.RawMessage {
	wrapped, _ := json.Marshal(map[string]interface{}{
		"type": "json_schema",
		"json_schema": map[string]interface{}{
			"name":   name,
			"schema": schema,
		},
	})
	return wrapped
}

// RunAgentLoop drives the agent until it stops requesting tools or the
// iteration budget is exhausted. Every requested tool call is resolved
// through the capability dispatch table against the snapshot. When a
// response schema is given, a final formatting turn requests the result in
// that schema (the API rejects response_format combined with tools).
func (c *Client) RunAgentLoop(
	agentID string,
	history []Message,
	snap *agent.Snapshot,
	schemaName string,
	schema json.RawMessage,
) (string, []Message, error) {
	if agentID == "" {
		return "", history, fmt.Errorf("agent id not configured")
	}

	// Without a snapshot there is nothing for a capability to run
	// against, so none are advertised.
	var tools []toolSpec
	if snap != nil {
		tools = capabilityTools()
	}
	for iteration := 0; iteration < defaultMaxIterations; iteration++ {
		msg, err := c.complete(completionRequest{
			AgentID:  agentID,
			Messages: history,
			Tools:    tools,
		})
		if err != nil {
			return "", history, err
		}
		history = append(history, *msg)

		if len(msg.ToolCalls) == 0 {
			logger.L.Debug("Agent loop finished", "agentID", agentID, "iterations", iteration+1)
			if schema == nil {
				return msg.Content, history, nil
			}
			history = append(history, Message{
				Role:    "user",
				Content: "Please return the final result as JSON matching the agreed schema.",
			})
			final, err := c.complete(completionRequest{
				AgentID:        agentID,
				Messages:       history,
				ResponseFormat: jsonSchemaFormat(schemaName, schema),
			})
			if err != nil {
				return "", history, err
			}
			history = append(history, *final)
			return final.Content, history, nil
		}

		for _, call := range msg.ToolCalls {
			capability, err := agent.Parse(call.Function.Name)
			if err != nil {
				return "", history, fmt.Errorf("agent requested %w", err)
			}
			result, err := agent.Invoke(capability, snap)
			if err != nil {
				return "", history, fmt.Errorf("capability %s failed: %w", call.Function.Name, err)
			}
			logger.L.Debug("Capability invoked for agent", "capability", call.Function.Name, "agentID", agentID)
			history = append(history, Message{
				Role:       "tool",
				Name:       call.Function.Name,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	return "", history, fmt.Errorf("agent %s exceeded %d iterations without a final answer", agentID, defaultMaxIterations)
}
