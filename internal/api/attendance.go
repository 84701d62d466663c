package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/campuskit/rollcall/internal/domain"
	apperrors "github.com/campuskit/rollcall/internal/errors"
	"github.com/campuskit/rollcall/internal/metrics"
)

// AttendanceClient fetches the attendance dataset over the authenticated
// channel. A 401 response classifies as session expiry; the client only
// classifies, the controller performs the teardown.
type AttendanceClient struct {
	baseURL string
	client  *http.Client
}

// NewAttendanceClient creates an AttendanceClient for the given backend base
// URL. A nil httpClient gets a default client with a 10s call timeout.
func NewAttendanceClient(baseURL string, httpClient *http.Client) *AttendanceClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultCallTimeout}
	}
	return &AttendanceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// FetchAttendance retrieves the full dataset for the session token. An empty
// server list yields an empty batch and no error.
func (c *AttendanceClient) FetchAttendance(ctx context.Context, token string) (domain.AttendanceBatch, error) {
	if token == "" {
		return domain.AttendanceBatch{}, apperrors.ValidationError("no session token, please log in")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/attendance", nil)
	if err != nil {
		return domain.AttendanceBatch{}, apperrors.FetchError("could not load attendance", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.AttendanceFetchesTotal.WithLabelValues("error").Inc()
		return domain.AttendanceBatch{}, apperrors.FetchError("could not load attendance", err)
	}

	body := readBody(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.AttendanceFetchesTotal.WithLabelValues("expired").Inc()
		return domain.AttendanceBatch{}, apperrors.SessionExpiredError()
	}
	if !is2xx(resp.StatusCode) {
		metrics.AttendanceFetchesTotal.WithLabelValues("error").Inc()
		message := messageFromBody(body)
		if message == "" {
			message = "could not load attendance"
		}
		return domain.AttendanceBatch{}, apperrors.FetchError(message, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	batch, err := decodeBatch(body)
	if err != nil {
		metrics.AttendanceFetchesTotal.WithLabelValues("error").Inc()
		return domain.AttendanceBatch{}, apperrors.FetchError("could not load attendance", err)
	}

	metrics.AttendanceFetchesTotal.WithLabelValues("success").Inc()
	return batch, nil
}

// decodeBatch decodes {"attendance": [...]} keeping the first record's key
// order as the batch header set. Go maps drop JSON key order, so the headers
// are walked off the raw first record with a token decoder.
func decodeBatch(body []byte) (domain.AttendanceBatch, error) {
	var payload struct {
		Attendance []json.RawMessage `json:"attendance"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.AttendanceBatch{}, fmt.Errorf("failed to decode attendance response: %w", err)
	}

	if len(payload.Attendance) == 0 {
		return domain.AttendanceBatch{}, nil
	}

	headers, err := recordKeys(payload.Attendance[0])
	if err != nil {
		return domain.AttendanceBatch{}, fmt.Errorf("failed to read record keys: %w", err)
	}

	records := make([]domain.AttendanceRecord, 0, len(payload.Attendance))
	for _, raw := range payload.Attendance {
		var record domain.AttendanceRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return domain.AttendanceBatch{}, fmt.Errorf("failed to decode attendance record: %w", err)
		}
		records = append(records, record)
	}

	return domain.AttendanceBatch{Headers: headers, Records: records}, nil
}

// recordKeys returns the top-level keys of a JSON object in document order.
func recordKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("attendance record is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in attendance record", tok)
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// skipValue consumes one JSON value, tracking nesting depth.
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}
