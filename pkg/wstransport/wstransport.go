// Package wstransport provides a WebSocket client transport for the
// modelcontextprotocol/go-sdk, which ships stdio, Streamable HTTP, and SSE
// transports but no WebSocket one. Each JSON-RPC message travels as a single
// text frame.
package wstransport

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// subprotocol is offered during the WebSocket handshake, per the MCP
// WebSocket transport convention.
const subprotocol = "mcp"

// readLimit lifts coder/websocket's 32KiB default; tool listings with
// embedded schemas routinely exceed it.
const readLimit = 16 << 20

// Transport dials a ws:// or wss:// MCP endpoint. It implements
// mcp.Transport; pass it to (*mcp.Client).Connect.
type Transport struct {
	// URL is the WebSocket endpoint.
	URL string
	// Header is added to the handshake request, e.g. for authorization.
	Header http.Header
	// HTTPClient optionally overrides the client used for the handshake.
	HTTPClient *http.Client
}

// Connect performs the WebSocket handshake. The returned connection is owned
// by the MCP session and closed through it.
func (t *Transport) Connect(ctx context.Context) (mcp.Connection, error) {
	opts := &websocket.DialOptions{
		HTTPHeader:   t.Header,
		HTTPClient:   t.HTTPClient,
		Subprotocols: []string{subprotocol},
	}
	conn, _, err := websocket.Dial(ctx, t.URL, opts)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(readLimit)
	return &connection{conn: conn}, nil
}

type connection struct {
	conn *websocket.Conn
}

// SessionID returns "" since the WebSocket transport has no session
// resumption concept.
func (c *connection) SessionID() string { return "" }

func (c *connection) Read(ctx context.Context) (jsonrpc.Message, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return jsonrpc.DecodeMessage(data)
}

func (c *connection) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *connection) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
