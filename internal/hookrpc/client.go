package hookrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
)

// #region client-struct

// Client calls the hook service on behalf of a hosting runtime.
type Client struct {
	conn *grpc.ClientConn // nil when built from an injected connection
	cc   grpc.ClientConnInterface
}

// NewClient connects to the hook service at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn builds a client over an existing connection. Close is
// then a no-op; the caller owns cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down the connection opened by NewClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion

// #region calls

// PromptBuild returns the overlay for ev, or nil for "no modification".
func (c *Client) PromptBuild(ctx context.Context, ev hooks.PromptBuild) (*experiment.Overlay, error) {
	out := new(structpb.Struct)
	in := encodeContext(ev.SessionKey, ev.SessionID, ev.AgentID)
	if err := c.cc.Invoke(ctx, methodPromptBuild, in, out); err != nil {
		return nil, fmt.Errorf("prompt build rpc: %w", err)
	}
	return decodeOverlay(out), nil
}

// SessionEnd notifies the service that a session completed.
func (c *Client) SessionEnd(ctx context.Context, ev hooks.SessionEnd) error {
	in := encodeContext(ev.SessionKey, ev.SessionID, "")
	if err := c.cc.Invoke(ctx, methodSessionEnd, in, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("session end rpc: %w", err)
	}
	return nil
}

// Startup notifies the service that the host started.
func (c *Client) Startup(ctx context.Context) error {
	if err := c.cc.Invoke(ctx, methodStartup, &emptypb.Empty{}, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("startup rpc: %w", err)
	}
	return nil
}

// #endregion
