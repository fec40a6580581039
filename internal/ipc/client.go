package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"exiled-search/pkg/logger"
)

const dialTimeout = 2 * time.Second

// SendCommand sends one request and waits for the daemon's answer. A search
// can take as long as the daemon allows for it, so the read deadline follows
// requestTimeout.
func SendCommand(socketPath string, req Request, log *logger.Logger) (Response, error) {
	if log == nil {
		log = logger.Nop()
	}

	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("failed to connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout + dialTimeout)); err != nil {
		return Response{}, err
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("failed to send %s request: %w", req.Command, err)
	}
	log.Debug("Request sent", "command", req.Command, "socket", socketPath)

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
