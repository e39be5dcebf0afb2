package client

import (
	"context"
	"net/http"
)

// Backend endpoints.
const (
	PathCurrentTime      = "/api/tws/current-time"
	PathConnectionStatus = "/api/tws/connection-status"
	PathConnect          = "/api/tws/connect"
	PathDisconnect       = "/api/tws/disconnect"
	PathHealth           = "/health"
)

// CurrentTime asks the gateway for its current time.
// Any 2xx yields a result, including one with Success=false.
func (c *Client) CurrentTime(ctx context.Context) (*TimeResult, error) {
	var result TimeResult
	if err := c.doJSON(ctx, http.MethodGet, PathCurrentTime, "current_time", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ConnectionStatus fetches the gateway connection state.
func (c *Client) ConnectionStatus(ctx context.Context) (*ConnectionStatus, error) {
	var status ConnectionStatus
	if err := c.doJSON(ctx, http.MethodGet, PathConnectionStatus, "connection_status", &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, PathHealth, "health", &health); err != nil {
		return nil, err
	}

	return &health, nil
}

// Connect asks the backend to open its gateway session.
//
// The backend answers 503 with {"success": false, ...} when the gateway
// refuses; that is reported as an "HTTP 503" APIError.
func (c *Client) Connect(ctx context.Context) (*ActionResult, error) {
	var result ActionResult
	if err := c.doJSON(ctx, http.MethodPost, PathConnect, "connect", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Disconnect asks the backend to close its gateway session.
func (c *Client) Disconnect(ctx context.Context) (*ActionResult, error) {
	var result ActionResult
	if err := c.doJSON(ctx, http.MethodPost, PathDisconnect, "disconnect", &result); err != nil {
		return nil, err
	}

	return &result, nil
}
