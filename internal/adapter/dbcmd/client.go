package dbcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client talks to the dbcalm-db-cmd daemon over its Unix socket. One
// request per connection; the daemon answers with a single JSON object.
type Client struct {
	socketPath string
	timeout    time.Duration
}

func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// CommandRequest is the wire format for a command.
type CommandRequest struct {
	Cmd  string                 `json:"cmd"`
	Args map[string]interface{} `json:"args"`
}

// CommandResponse is the daemon's answer; ID is the command id of the
// spawned process on 202.
type CommandResponse struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// SendCommand dials the socket, writes one request and reads one response.
// The timeout bounds the whole exchange, dial included.
func (c *Client) SendCommand(ctx context.Context, cmd string, args map[string]interface{}) (*CommandResponse, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	requestBytes, err := json.Marshal(CommandRequest{Cmd: cmd, Args: args})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(requestBytes); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Responses fit in one read; the daemon writes them whole and closes.
	buffer := make([]byte, 4096)
	n, err := conn.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response CommandResponse
	if err := json.Unmarshal(buffer[:n], &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response, nil
}
