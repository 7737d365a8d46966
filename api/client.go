package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the assistant backend over HTTP
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a backend client
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 120 // chat replies can be slow
	}

	client := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	return &Client{
		config: config,
		client: client,
	}, nil
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type keyTermsResponse struct {
	KeyTerms map[string]KeyTerm `json:"key_terms"`
}

type createKeyTermRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Relevance  string `json:"relevance"`
}

type updateKeyTermRequest struct {
	Definition string `json:"definition"`
	Relevance  string `json:"relevance"`
}

// SendMessage submits text and an optional file as multipart form data
// and returns the assistant reply
func (c *Client) SendMessage(ctx context.Context, text string, file *FileUpload) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("message", text); err != nil {
		return "", fmt.Errorf("failed to write message field: %w", err)
	}

	if file != nil {
		part, err := writer.CreateFormFile("file", file.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "send message", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus("send message", resp); err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode reply: %w", err)
	}

	return chatResp.Reply, nil
}

// ListKeyTerms fetches the full key-term collection
func (c *Client) ListKeyTerms(ctx context.Context) (map[string]KeyTerm, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/key-terms", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "list key terms", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus("list key terms", resp); err != nil {
		return nil, err
	}

	var listResp keyTermsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode key terms: %w", err)
	}

	if listResp.KeyTerms == nil {
		listResp.KeyTerms = map[string]KeyTerm{}
	}

	return listResp.KeyTerms, nil
}

// CreateKeyTerm adds a new key term
func (c *Client) CreateKeyTerm(ctx context.Context, term string, kt KeyTerm) error {
	reqBody := createKeyTermRequest{
		Term:       term,
		Definition: kt.Definition,
		Relevance:  kt.Relevance,
	}
	return c.doJSON(ctx, "create key term", http.MethodPost, c.config.BaseURL+"/key-terms", reqBody)
}

// UpdateKeyTerm replaces an existing key term's definition and relevance
func (c *Client) UpdateKeyTerm(ctx context.Context, term string, kt KeyTerm) error {
	reqBody := updateKeyTermRequest{
		Definition: kt.Definition,
		Relevance:  kt.Relevance,
	}
	return c.doJSON(ctx, "update key term", http.MethodPut, c.termURL(term), reqBody)
}

// DeleteKeyTerm removes a key term
func (c *Client) DeleteKeyTerm(ctx context.Context, term string) error {
	return c.doJSON(ctx, "delete key term", http.MethodDelete, c.termURL(term), nil)
}

// termURL builds the per-term endpoint with the term URL-escaped
func (c *Client) termURL(term string) string {
	return c.config.BaseURL + "/key-terms/" + url.PathEscape(term)
}

// doJSON sends an optional JSON body and checks the response status
func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	return nil
}

// checkStatus maps non-2xx responses to ServerError
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &ServerError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
