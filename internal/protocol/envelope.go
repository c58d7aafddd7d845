// Package protocol implements the JSON-RPC 2.0 wire discipline shared by
// every agent: a thin envelope over params, a closed tool surface, and the
// HTTP transport (client + server) that carries it.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/google/uuid"
)

// ProtocolTag is the negotiated protocol version this build speaks.
const ProtocolTag = "league.v1"

// Request is a full JSON-RPC 2.0 request carrying the league envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      string          `json:"id"`
	Params  Params          `json:"params"`
}

// Params is the invariant envelope header plus the method-specific payload.
type Params struct {
	Protocol  string          `json:"protocol"`
	MessageID string          `json:"message_id"`
	Sender    string          `json:"sender"`
	Timestamp string          `json:"timestamp"`
	AuthToken string          `json:"auth_token,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Response is a full JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

// WireError is the JSON-RPC error object, carrying the domain error kind
// in Data so callers can branch on it without string-matching Message.
type WireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    *WireErrorData  `json:"data,omitempty"`
}

// WireErrorData carries the stable machine-readable kind (§7).
type WireErrorData struct {
	Kind string `json:"kind"`
}

// NewRequest builds a Request envelope for method, from sender (e.g.
// "referee:R01"), with the given auth token and JSON-encodable payload.
func NewRequest(method, sender, authToken string, payload interface{}) (*Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, rpcerr.Wrap(rpcerr.MalformedMessage, err, "marshal payload for %s", method)
	}
	return &Request{
		JSONRPC: "2.0",
		Method:  method,
		ID:      uuid.NewString(),
		Params: Params{
			Protocol:  ProtocolTag,
			MessageID: uuid.NewString(),
			Sender:    sender,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			AuthToken: authToken,
			Payload:   raw,
		},
	}, nil
}

// DecodePayload unmarshals the request payload into dst.
func (r *Request) DecodePayload(dst interface{}) error {
	if len(r.Params.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Params.Payload, dst); err != nil {
		return rpcerr.Wrap(rpcerr.MalformedMessage, err, "decode payload for %s", r.Method)
	}
	return nil
}

// ResultResponse builds a success Response for the given request id.
func ResultResponse(id string, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{JSONRPC: "2.0", ID: id, Result: raw}, nil
}

// ErrorResponse builds a failure Response from a domain or transport error.
func ErrorResponse(id string, err error) *Response {
	code := -32000
	kind := "INTERNAL"
	msg := err.Error()
	if rerr, ok := rpcerr.AsError(err); ok {
		kind = string(rerr.Kind)
		msg = rerr.Error()
		code = codeForKind(rerr.Kind)
	}
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &WireError{
			Code:    code,
			Message: msg,
			Data:    &WireErrorData{Kind: kind},
		},
	}
}

// codeForKind maps a domain kind onto a JSON-RPC-ish numeric code. The
// numbers are not load-bearing for clients (they branch on Data.Kind); they
// exist because the JSON-RPC 2.0 envelope requires a code field.
func codeForKind(kind rpcerr.Kind) int {
	switch {
	case rpcerr.Retryable(kind):
		return -32001
	default:
		return -32002
	}
}
