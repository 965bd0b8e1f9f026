package upstream

import (
	"io"
	"net/http"
)

// ReadAll reads and returns the full response body, closing it afterwards.
// Truncating a success body is a correctness bug, so the body is always
// drained to EOF before the connection is released.
func ReadAll(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
