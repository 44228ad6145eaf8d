// Package payment confirms a payment by reference number and unlocks export
// once the payment endpoint reports it as paid.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Gateway talks to the external payment registration/status endpoint.
type Gateway interface {
	// Register submits a reference number. Success means only that the
	// request was delivered.
	Register(ctx context.Context, reference string) error
	// Status returns the plain-text status recorded for reference.
	Status(ctx context.Context, reference string) (string, error)
}

// DefaultTimeout bounds each request made by HTTPGateway.
const DefaultTimeout = 15 * time.Second

// maxStatusBytes caps how much of a status reply is read.
const maxStatusBytes = 4 << 10

// HTTPGateway is a Gateway for a web-app endpoint that accepts a JSON POST to
// register a reference and answers GET ?reference= with plain text.
type HTTPGateway struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPGateway returns a gateway for endpoint. A nil client gets DefaultTimeout.
func NewHTTPGateway(endpoint string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPGateway{Endpoint: endpoint, Client: client}
}

// Register posts {"reference": ref}. The endpoint's reply is never read: the
// browser client it was built for cannot read it either, so any completed
// round trip counts as success and only transport failures are errors.
func (g *HTTPGateway) Register(ctx context.Context, reference string) error {
	body, err := json.Marshal(map[string]string{"reference": reference})
	if err != nil {
		return &GatewayError{Op: "register", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Op: "register", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return &GatewayError{Op: "register", Cause: err}
	}
	_ = resp.Body.Close()
	return nil
}

// Status fetches the status text for reference.
func (g *HTTPGateway) Status(ctx context.Context, reference string) (string, error) {
	u, err := url.Parse(g.Endpoint)
	if err != nil {
		return "", &GatewayError{Op: "status", Cause: err}
	}
	q := u.Query()
	q.Set("reference", reference)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &GatewayError{Op: "status", Cause: err}
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", &GatewayError{Op: "status", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &GatewayError{Op: "status", Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBytes))
	if err != nil {
		return "", &GatewayError{Op: "status", Cause: err}
	}
	return string(data), nil
}
