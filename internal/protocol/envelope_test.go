package protocol

import (
	"testing"

	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	MatchID string `json:"match_id"`
	Move    int    `json:"move"`
}

func TestNewRequest_SetsEnvelopeFieldsAndEncodesPayload(t *testing.T) {
	req, err := NewRequest("request_move", "player:P01", "tok", testPayload{MatchID: "M01", Move: 5})
	require.NoError(t, err)

	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, "request_move", req.Method)
	assert.Equal(t, ProtocolTag, req.Params.Protocol)
	assert.Equal(t, "player:P01", req.Params.Sender)
	assert.Equal(t, "tok", req.Params.AuthToken)
	assert.NotEmpty(t, req.ID)
	assert.NotEmpty(t, req.Params.MessageID)
	assert.NotEmpty(t, req.Params.Timestamp)

	var decoded testPayload
	require.NoError(t, req.DecodePayload(&decoded))
	assert.Equal(t, "M01", decoded.MatchID)
	assert.Equal(t, 5, decoded.Move)
}

func TestDecodePayload_EmptyPayloadIsNoop(t *testing.T) {
	req := &Request{}
	var dst testPayload
	assert.NoError(t, req.DecodePayload(&dst))
}

func TestResultResponse_EncodesResult(t *testing.T) {
	resp, err := ResultResponse("id-1", map[string]string{"status": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", resp.ID)
	assert.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), "\"status\":\"ok\"")
}

func TestErrorResponse_CarriesDomainKindInData(t *testing.T) {
	domainErr := rpcerr.New(rpcerr.InvalidMove, "move out of range")
	resp := ErrorResponse("id-2", domainErr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_MOVE", resp.Error.Data.Kind)
}

func TestErrorResponse_PlainErrorFallsBackToInternal(t *testing.T) {
	resp := ErrorResponse("id-3", assert.AnError)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL", resp.Error.Data.Kind)
}

func TestErrorResponse_RetryableKindGetsDistinctCode(t *testing.T) {
	retryable := ErrorResponse("id-4", rpcerr.New(rpcerr.Timeout, "timed out"))
	nonRetryable := ErrorResponse("id-5", rpcerr.New(rpcerr.InvalidMove, "bad move"))
	assert.NotEqual(t, retryable.Error.Code, nonRetryable.Error.Code)
}
