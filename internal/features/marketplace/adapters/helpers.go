package adapters

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// doJSON executes the request and returns the full response body plus the
// HTTP status. The body is always read so callers can attach the raw vendor
// payload to errors.
func doJSON(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// numberOrString returns the numeric form of an identifier when it parses as
// an integer; vendors that expect numeric ids reject quoted ones.
func numberOrString(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
