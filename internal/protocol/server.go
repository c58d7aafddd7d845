// internal/protocol/server.go
// gin-based JSON-RPC dispatcher mounted at a single endpoint per agent.

package protocol

import (
	"net/http"
	"strings"

	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler processes one decoded request and returns a JSON-encodable result
// or a domain error. The envelope itself (protocol tag, auth token) is
// validated by the Server before Handler is invoked.
type Handler func(req *Request) (interface{}, error)

// TokenValidator checks a bearer token for a given sender and returns
// whether it is valid. Methods passed to NewServer as openMethods are exempt.
type TokenValidator func(sender, token string) bool

// Server is a small method-name-keyed dispatch table decoding the envelope
// once at the HTTP boundary, per the "dynamic attribute bags" re-architecture
// note: the tagged variant is selected by method, not sniffed per-field.
type Server struct {
	logger     *zap.SugaredLogger
	validator  TokenValidator
	openMethods map[string]bool
	handlers   map[string]Handler
}

// NewServer creates a dispatcher. openMethods names the tool calls exempt
// from auth_token validation (typically the initial registration calls).
func NewServer(logger *zap.SugaredLogger, validator TokenValidator, openMethods ...string) *Server {
	open := make(map[string]bool, len(openMethods))
	for _, m := range openMethods {
		open[m] = true
	}
	return &Server{
		logger:      logger,
		validator:   validator,
		openMethods: open,
		handlers:    make(map[string]Handler),
	}
}

// Register adds a method to the dispatch table.
func (s *Server) Register(method string, h Handler) {
	s.handlers[method] = h
}

// Mount wires the single JSON-RPC POST route onto router at path.
func (s *Server) Mount(router gin.IRouter, path string) {
	router.POST(path, s.serveRPC)
}

func (s *Server) serveRPC(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "", rpcerr.Wrap(rpcerr.MalformedMessage, err, "invalid JSON-RPC envelope"))
		return
	}

	if req.Params.Protocol != ProtocolTag {
		writeError(c, req.ID, rpcerr.New(rpcerr.ProtocolVersionMismatch,
			"unsupported protocol tag %q, want %q", req.Params.Protocol, ProtocolTag))
		return
	}

	if !s.openMethods[req.Method] {
		sender := req.Params.Sender
		if s.validator == nil || !s.validator(sender, req.Params.AuthToken) {
			writeError(c, req.ID, rpcerr.New(rpcerr.AuthFailed, "invalid or missing auth_token for %s", sender))
			return
		}
	}

	handler, ok := s.handlers[req.Method]
	if !ok {
		writeError(c, req.ID, rpcerr.New(rpcerr.MalformedMessage, "unknown method %q", req.Method))
		return
	}

	result, err := handler(&req)
	if err != nil {
		s.logger.Debugw("rpc handler error", "method", req.Method, "sender", req.Params.Sender, "err", err)
		writeError(c, req.ID, err)
		return
	}

	resp, err := ResultResponse(req.ID, result)
	if err != nil {
		writeError(c, req.ID, rpcerr.Wrap(rpcerr.MalformedMessage, err, "marshal result for %s", req.Method))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, id string, err error) {
	c.JSON(http.StatusOK, ErrorResponse(id, err))
}

// SenderRole extracts the role prefix ("league"/"referee"/"player") from a
// "<role>:<id>" sender string.
func SenderRole(sender string) string {
	if idx := strings.IndexByte(sender, ':'); idx >= 0 {
		return sender[:idx]
	}
	return sender
}

// SenderID extracts the id suffix from a "<role>:<id>" sender string.
func SenderID(sender string) string {
	if idx := strings.IndexByte(sender, ':'); idx >= 0 {
		return sender[idx+1:]
	}
	return sender
}
