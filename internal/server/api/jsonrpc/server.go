package jsonrpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Server represents a JSON-RPC server.
type Server struct {
	handler *DexHandler
	log     *slog.Logger
}

// NewServer creates a new JSON-RPC server instance.
func NewServer(handler *DexHandler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{handler: handler, log: log}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, &RPCError{Code: codeParseError, Message: "Parse error"})
		return
	}
	if req.Method == "" {
		writeError(w, req.ID, &RPCError{Code: codeInvalidRequest, Message: "missing method"})
		return
	}

	result, rpcErr := s.handler.Handle(req.Method, req.Params)
	if rpcErr != nil {
		s.log.Debug("rpc call failed", "method", req.Method, "code", rpcErr.Code, "err", rpcErr.Message)
		writeError(w, req.ID, rpcErr)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"result":  result,
		"id":      req.ID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, id interface{}, rpcErr *RPCError) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error":   rpcErr,
		"id":      id,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
