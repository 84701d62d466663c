// Package api implements the HTTP clients for the rollcall backend: the
// unauthenticated auth calls and the authenticated attendance fetch.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCallTimeout = 10 * time.Second

// serverMessage is the message-bearing payload shape the backend uses for
// both success and failure responses.
type serverMessage struct {
	Message string `json:"message"`
}

// messageFromBody extracts the server-supplied message from a response body,
// returning "" when the body carries no structured message. Callers fall back
// to a generic string in that case; the absence of a structured body is how
// transport failures are told apart from application-level rejections.
func messageFromBody(body []byte) string {
	var payload serverMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}

func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return body
}

func is2xx(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
