package ports

import (
	"context"
	"encoding/json"
)

// Response is the normalized result of every remote call. Transport errors
// and non-2xx statuses are folded into the Success=false branch; consumers
// never see a raw error from the gateway.
type Response struct {
	Success bool
	// Data is the raw response body on success, left to the caller to decode.
	Data json.RawMessage
	// Message carries the server's error message (or a generic fallback)
	// when Success is false.
	Message string
}

// Gateway executes a request against a named API resource.
//
// For GET, body is encoded as query parameters; for POST/PUT/DELETE it is
// sent as a JSON payload. subPath, when non-empty, is appended to the
// resource path ("get_user" + "5" -> /api/get_user/5).
type Gateway interface {
	Do(ctx context.Context, resource, method, subPath string, body any) Response
}
