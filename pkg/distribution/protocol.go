package distribution

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Client request: either a bare sink name or this structure in JSON
type Request struct {
	Name string `json:"name"`
}

// Server reply: exactly one of Resource and Error is set
type Response struct {
	Resource *float64 `json:"resource,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func ResourceResponse(quantity float64) *Response {
	return &Response{Resource: &quantity}
}

func ErrorResponse(err error) *Response {
	return &Response{Error: err.Error()}
}

var errEmptyRequest = errors.New("empty request")

// ParseRequest extracts the sink name from a bare or JSON request
func ParseRequest(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", errEmptyRequest
	}
	if data[0] != '{' {
		return string(data), nil
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return "", fmt.Errorf("malformed request: %w", err)
	}
	if req.Name == "" {
		return "", errors.New("request has no name")
	}
	return req.Name, nil
}

// Encode a request in the JSON form, or as the bare name if raw
func EncodeRequest(name string, raw bool) ([]byte, error) {
	if raw {
		return []byte(name), nil
	}
	return json.Marshal(&Request{Name: name})
}
