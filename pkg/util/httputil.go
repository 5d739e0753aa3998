package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPError is returned when the remote endpoint replies with a non 2xx
// status code.
type HTTPError struct {
	StatusCode int
	Code       string
	Msg        string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Msg)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Msg)
}

// DoJSONRequest sends the JSON encoded body to the given url and decodes a
// successful reply into result. Both body and result can be nil.
func DoJSONRequest(
	ctx context.Context, client *http.Client, method, url string,
	body, result interface{}, header map[string]string,
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range header {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Read full body to enable connection reuse.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &HTTPError{resp.StatusCode, errResp.Code, errResp.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Msg: string(bytes.TrimSpace(data))}
	}

	if result == nil || len(data) <= 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
