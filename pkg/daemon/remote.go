package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/models"
)

// RemoteClient implements Client by calling the daemon's HTTP API over a Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
}

// NewRemoteClient creates a new RemoteClient connected to the daemon socket.
func NewRemoteClient(socketPath string) (*RemoteClient, error) {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		DisableKeepAlives: false,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}

	return &RemoteClient{
		httpClient: client,
		socketPath: socketPath,
	}, nil
}

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

// SocketPath returns the socket the client talks to.
func (c *RemoteClient) SocketPath() string {
	return c.socketPath
}

func (c *RemoteClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return storeerrors.DaemonUnavailable(c.socketPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// decodeError turns an error response back into a StoreError when the
// daemon sent one.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var se storeerrors.StoreError
	if err := json.Unmarshal(data, &se); err == nil && se.Code != "" {
		return &se
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("daemon returned status %d: %s", resp.StatusCode, msg)
}

// GetState returns the daemon's state snapshot.
func (c *RemoteClient) GetState(ctx context.Context) (*State, error) {
	var st State
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetSelection sets the selected value of field.
func (c *RemoteClient) SetSelection(ctx context.Context, field Field, id *int64) (*SelectionResponse, error) {
	var out SelectionResponse
	if err := c.do(ctx, http.MethodPost, "/api/selection", SelectionRequest{Field: field, ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEnvironment returns the active environment.
func (c *RemoteClient) GetEnvironment(ctx context.Context) (*EnvironmentResponse, error) {
	var out EnvironmentResponse
	if err := c.do(ctx, http.MethodGet, "/api/environment", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetEnvironment switches the daemon between live and stage.
func (c *RemoteClient) SetEnvironment(ctx context.Context, env models.Environment) (*EnvironmentResponse, error) {
	var out EnvironmentResponse
	if err := c.do(ctx, http.MethodPost, "/api/environment", EnvironmentRequest{Environment: env}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetActionModal returns the action modal.
func (c *RemoteClient) GetActionModal(ctx context.Context) (*models.ActionModal, error) {
	var m models.ActionModal
	if err := c.do(ctx, http.MethodGet, "/api/action-modal", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SetActionModal replaces the action modal. The reload counter is kept.
func (c *RemoteClient) SetActionModal(ctx context.Context, m models.ActionModal) (*models.ActionModal, error) {
	var out models.ActionModal
	if err := c.do(ctx, http.MethodPost, "/api/action-modal", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetActionModal restores the default action modal.
func (c *RemoteClient) ResetActionModal(ctx context.Context) (*models.ActionModal, error) {
	var out models.ActionModal
	if err := c.do(ctx, http.MethodPost, "/api/action-modal/reset", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BumpReload increments the reload counter.
func (c *RemoteClient) BumpReload(ctx context.Context) (int, error) {
	var out ReloadResponse
	if err := c.do(ctx, http.MethodPost, "/api/action-modal/reload", nil, &out); err != nil {
		return 0, err
	}
	return out.Reload, nil
}

// SetFlags updates the flags set in req.
func (c *RemoteClient) SetFlags(ctx context.Context, req FlagsRequest) (*Flags, error) {
	var out Flags
	if err := c.do(ctx, http.MethodPost, "/api/flags", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh asks the daemon to re-fetch its lists.
func (c *RemoteClient) Refresh(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/refresh", nil, nil)
}

// GetRunningConfig returns the configuration the daemon is running with.
func (c *RemoteClient) GetRunningConfig(ctx context.Context) (*RunningConfig, error) {
	var out RunningConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsRunning returns true if the daemon is available and responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamState subscribes to real-time state updates via Server-Sent Events (SSE).
// Returns a channel that receives updates. The channel is closed when the context is cancelled
// or the connection is lost.
func (c *RemoteClient) StreamState(ctx context.Context) (<-chan StateUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Use a separate client with no timeout for streaming
	streamTransport := &http.Transport{
		DialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
	}
	streamClient := &http.Client{
		Transport: streamTransport,
		Timeout:   0, // No timeout for streaming
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, storeerrors.DaemonUnavailable(c.socketPath, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	ch := make(chan StateUpdate, 10)

	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		// Command lists can be large; the default 64KB line limit is too small
		buf := make([]byte, 0, 1024*1024)
		scanner.Buffer(buf, 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()

			// Skip comments and empty lines
			if strings.HasPrefix(line, ":") || line == "" {
				continue
			}

			if strings.HasPrefix(line, "data: ") {
				var update StateUpdate
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
					continue // Skip malformed data
				}

				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// StreamStateWS subscribes to state updates over the daemon's websocket
// endpoint. It delivers the same messages as StreamState.
func (c *RemoteClient) StreamStateWS(ctx context.Context) (<-chan StateUpdate, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
		HandshakeTimeout: 5 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, "ws://unix/api/ws", nil)
	if err != nil {
		return nil, storeerrors.DaemonUnavailable(c.socketPath, err)
	}

	ch := make(chan StateUpdate, 10)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
		case <-done:
		}
		conn.Close()
	}()

	go func() {
		defer close(ch)
		defer close(done)
		for {
			var update StateUpdate
			if err := conn.ReadJSON(&update); err != nil {
				return
			}
			select {
			case ch <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ensure RemoteClient implements Client interface.
var _ Client = (*RemoteClient)(nil)
