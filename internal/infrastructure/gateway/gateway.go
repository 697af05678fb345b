// Package gateway implements the HTTP boundary to the forum API. Every call
// is normalized into a ports.Response: transport failures and non-2xx
// statuses are folded into the Success=false branch so callers never handle
// raw errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/damiancxliew/web-forum/internal/core/ports"
	"github.com/damiancxliew/web-forum/internal/metrics"
)

const maxResponseBytes = 4 << 20

// TokenSource supplies the current bearer token, or "" when anonymous.
type TokenSource func() string

// HTTPGateway is the production ports.Gateway backed by net/http.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	token   TokenSource
	log     zerolog.Logger
}

// New builds a gateway for the API at baseURL. token may be nil for a client
// that never authenticates.
func New(baseURL string, timeout time.Duration, token TokenSource, log zerolog.Logger) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		token:   token,
		log:     log,
	}
}

// Do executes one request against a named resource. See ports.Gateway for
// the contract.
func (g *HTTPGateway) Do(ctx context.Context, resource, method, subPath string, body any) ports.Response {
	start := time.Now()
	requestID := uuid.NewString()

	resp := g.execute(ctx, resource, method, subPath, body)

	outcome := "success"
	if !resp.Success {
		outcome = "failure"
	}
	metrics.GatewayRequestsTotal.WithLabelValues(resource, method, outcome).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	var evt *zerolog.Event
	if resp.Success {
		evt = g.log.Debug()
	} else {
		evt = g.log.Warn().Str("message", resp.Message)
	}
	evt.
		Str("request_id", requestID).
		Str("resource", resource).
		Str("method", method).
		Dur("elapsed", time.Since(start)).
		Msg("gateway request")

	return resp
}

func (g *HTTPGateway) execute(ctx context.Context, resource, method, subPath string, body any) ports.Response {
	target := g.baseURL + "/api/" + resource
	if subPath != "" {
		target += "/" + strings.TrimLeft(subPath, "/")
	}

	var payload io.Reader
	if method == http.MethodGet {
		query, err := queryParams(body)
		if err != nil {
			return failure("invalid query parameters")
		}
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
	} else if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return failure("invalid request payload")
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return failure("invalid request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := g.client.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("resource", resource).Msg("transport error")
		return failure("could not reach the server")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return failure("could not read the server response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return failure(serverMessage(raw, res.StatusCode))
	}

	return ports.Response{Success: true, Data: raw}
}

// queryParams flattens a GET body into URL query parameters. The server
// accepts only scalar filters, so nested values are rejected.
func queryParams(body any) (url.Values, error) {
	if body == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	values := url.Values{}
	for key, val := range fields {
		switch v := val.(type) {
		case string:
			values.Set(key, v)
		case bool:
			values.Set(key, fmt.Sprintf("%t", v))
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case nil:
			// skip
		default:
			return nil, fmt.Errorf("non-scalar query parameter %q", key)
		}
	}
	return values, nil
}

// serverMessage extracts the server's {"message": ...} envelope, falling
// back to the HTTP status text.
func serverMessage(raw []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return http.StatusText(status)
}

func failure(message string) ports.Response {
	return ports.Response{Success: false, Message: message}
}
