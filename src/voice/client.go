// Package voice is the client for the ElevenLabs conversational-AI API.
// It keeps the voice agent's knowledge base in sync with the current
// negotiation context so a phone call can pick up where the email thread
// left off.
package voice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/username/dealdesk/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

// Client talks to the ElevenLabs convai endpoints.
type Client struct {
	httpClient http.Client
	baseURL    string
	apiKey     string
	agentID    string
}

// NewClient builds the client with a cookie jar, matching how the other
// outbound HTTP clients in this codebase are constructed.
func NewClient(baseURL, apiKey, agentID string) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	return &Client{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		agentID: agentID,
	}
}

// Enabled reports whether the collaborator is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != "" && c.agentID != ""
}

func (c *Client) do(method, path string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling voice API: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voice API returned status %d for %s %s: %s", resp.StatusCode, method, path, string(raw))
	}
	return resp, nil
}

// AgentID returns the configured voice agent id, which the UI needs to
// start the browser call widget.
func (c *Client) AgentID() string { return c.agentID }

// listDocuments returns the ids of every document currently in the
// knowledge base.
func (c *Client) listDocuments() ([]string, error) {
	resp, err := c.do("GET", "/v1/convai/knowledge-base", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Documents []struct {
			ID string `json:"id"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding knowledge base list: %w", err)
	}

	ids := make([]string, 0, len(out.Documents))
	for _, doc := range out.Documents {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// uploadDocument uploads one text document and returns its id.
func (c *Client) uploadDocument(name string, content []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.WriteField("name", ""); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	resp, err := c.do("POST", "/v1/convai/knowledge-base", writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	return out.ID, nil
}

type knowledgeBaseEntry struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	UsageMode string `json:"usage_mode"`
}

// setAgentKnowledgeBase patches the agent config so its prompt uses
// exactly the given documents.
func (c *Client) setAgentKnowledgeBase(entries []knowledgeBaseEntry) error {
	if entries == nil {
		entries = []knowledgeBaseEntry{}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"conversation_config": map[string]interface{}{
			"agent": map[string]interface{}{
				"prompt": map[string]interface{}{
					"knowledge_base": entries,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	resp, err := c.do("PATCH", "/v1/convai/agents/"+c.agentID, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// deleteDocument removes one document from the knowledge base.
func (c *Client) deleteDocument(id string) error {
	resp, err := c.do("DELETE", "/v1/convai/knowledge-base/"+id, "", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ReplaceContext clears the agent's knowledge base and uploads the given
// negotiation context as its single document. The agent must be unlinked
// from a document before the document can be deleted.
func (c *Client) ReplaceContext(name string, content []byte) error {
	ids, err := c.listDocuments()
	if err != nil {
		return err
	}
	if err := c.setAgentKnowledgeBase(nil); err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.deleteDocument(id); err != nil {
			return err
		}
		logger.L.Debug("Deleted stale voice context document", "documentID", id)
	}

	docID, err := c.uploadDocument(name, content)
	if err != nil {
		return err
	}
	if err := c.setAgentKnowledgeBase([]knowledgeBaseEntry{{
		Type:      "file",
		Name:      name,
		ID:        docID,
		UsageMode: "auto",
	}}); err != nil {
		return err
	}

	logger.L.Info("Voice agent context replaced", "documentID", docID, "name", name)
	return nil
}
