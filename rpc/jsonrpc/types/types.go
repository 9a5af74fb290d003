// Package types defines the JSON-RPC 2.0 envelope used to talk to
// chain RPC nodes.
package types

import (
	"encoding/json"
	"fmt"
)

// RPCRequest is a JSON-RPC 2.0 request. IDs are integers; the client
// assigns them from an atomic counter so responses can be matched to
// the calls that produced them.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRPCRequest builds a request from already-encoded params.
func NewRPCRequest(id int64, method string, params json.RawMessage) RPCRequest {
	return RPCRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// ParamsToRequest constructs a new RPCRequest with the given ID,
// method, and parameters. Chain RPC methods take positional params,
// so params is conventionally a slice.
func ParamsToRequest(id int64, method string, params interface{}) (RPCRequest, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return RPCRequest{}, fmt.Errorf("encode %s params: %w", method, err)
	}
	return NewRPCRequest(id, method, payload), nil
}

func (req RPCRequest) String() string {
	return fmt.Sprintf("RPCRequest{%d %s/%X}", req.ID, req.Method, req.Params)
}

// RPCError is the error member of a JSON-RPC 2.0 response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (err RPCError) Error() string {
	const baseFormat = "RPC error %v - %s"
	if len(err.Data) > 0 {
		return fmt.Sprintf(baseFormat+": %s", err.Code, err.Message, err.Data)
	}
	return fmt.Sprintf(baseFormat, err.Code, err.Message)
}

// RPCResponse is a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set; Result may be JSON null for methods that report
// missing data that way.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (resp RPCResponse) String() string {
	if resp.Error == nil {
		return fmt.Sprintf("RPCResponse{%d %X}", resp.ID, resp.Result)
	}
	return fmt.Sprintf("RPCResponse{%d %v}", resp.ID, resp.Error)
}
