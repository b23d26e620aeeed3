package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// readAll reads the request body and puts an unread copy back for the
// handler.
func readAll(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, err
}

func decodeFields(r *http.Request) (map[string]string, error) {
	var input map[string]string
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return nil, err
	}

	return input, nil
}
