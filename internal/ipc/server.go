package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"exiled-search/pkg/logger"
)

const (
	CommandSearch   = "search"
	CommandValidate = "validate"
	CommandStatus   = "status"
)

const requestTimeout = 2 * time.Minute

type Request struct {
	Command string `json:"command"`
	// Text is item text for search; empty means capture from the game.
	Text    string `json:"text,omitempty"`
	Scale   int    `json:"scale,omitempty"`
	Profile string `json:"profile,omitempty"`
}

type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Handler executes daemon commands. Returned data is sent back as JSON.
type Handler interface {
	Search(ctx context.Context, req Request) (string, interface{}, error)
	Validate(ctx context.Context) (string, interface{}, error)
	Status() interface{}
}

type Server struct {
	socketPath string
	handler    Handler
	log        *logger.Logger
}

func NewServer(socketPath string, handler Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{socketPath: socketPath, handler: handler, log: log}
}

// Serve accepts connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	// Remove the socket file if it already exists
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer os.Remove(s.socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.log.Info("Socket server started", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("Socket server stopped")
				return nil
			}
			s.log.Error("Failed to accept connection", err)
			continue
		}

		s.log.Debug("New connection accepted")
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Error("Failed to decode request", err)
		return
	}

	s.log.Info("Received request", "command", req.Command)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp := s.dispatch(ctx, req)

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Error("Failed to encode response", err)
	} else {
		s.log.Debug("Response sent successfully", "status", resp.Status)
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	var (
		message string
		data    interface{}
		err     error
	)

	switch req.Command {
	case CommandSearch:
		message, data, err = s.handler.Search(ctx, req)
	case CommandValidate:
		message, data, err = s.handler.Validate(ctx)
	case CommandStatus:
		message, data = "ok", s.handler.Status()
	default:
		s.log.Error("Unknown command received", fmt.Errorf("command: %s", req.Command))
		return Response{Status: StatusError, Message: "Unknown command"}
	}

	resp := Response{Status: StatusSuccess, Message: message}
	if err != nil {
		s.log.Error("Command failed", err, "command", req.Command)
		resp = Response{Status: StatusError, Message: err.Error()}
	}
	if data != nil {
		raw, merr := json.Marshal(data)
		if merr != nil {
			s.log.Warn("Failed to encode response data", "error", merr)
		} else {
			resp.Data = raw
		}
	}
	return resp
}
