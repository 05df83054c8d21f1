package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	readChunkSize  = 16
	readTimeout    = 200 * time.Millisecond
	maxMessageSize = 1024 * 1024 // 1MB

	unlinkRetries    = 10
	unlinkRetryDelay = 200 * time.Millisecond
)

// Server owns one Unix-domain socket. One JSON object per connection; the
// end of the request is signalled by the peer going idle for readTimeout.
type Server struct {
	socketPath string
	processor  RequestProcessor
}

func NewServer(socketPath string, processor RequestProcessor) *Server {
	return &Server{
		socketPath: socketPath,
		processor:  processor,
	}
}

func (s *Server) Start() error {
	sockDir := filepath.Dir(s.socketPath)

	if err := os.MkdirAll(sockDir, 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := s.unlinkStaleSocket(); err != nil {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	defer listener.Close()

	s.applyParentPermissions(sockDir)

	log.Printf("socket server listening on %s", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("failed to accept connection: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// unlinkStaleSocket removes a socket file left behind by a previous run.
// A busy filesystem can briefly hold the inode, hence the retry.
func (s *Server) unlinkStaleSocket() error {
	var lastErr error
	for i := 0; i < unlinkRetries; i++ {
		err := os.Remove(s.socketPath)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		lastErr = err
		time.Sleep(unlinkRetryDelay)
	}
	return fmt.Errorf("failed to remove stale socket %s: %w", s.socketPath, lastErr)
}

// applyParentPermissions copies the socket directory's permission bits onto
// the socket file so the less-privileged API service can connect.
func (s *Server) applyParentPermissions(sockDir string) {
	info, err := os.Stat(sockDir)
	if err != nil {
		log.Printf("warning: failed to stat socket directory: %v", err)
		return
	}
	if err := os.Chmod(s.socketPath, info.Mode().Perm()); err != nil {
		log.Printf("warning: failed to set socket permissions: %v", err)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	var data []byte
	reader := bufio.NewReader(conn)

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		chunk := make([]byte, readChunkSize)
		n, err := reader.Read(chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
		}

		if len(data) > maxMessageSize {
			s.sendResponse(conn, CommandResponse{
				Code:    400,
				Status:  "Bad Request",
				Message: "Message too large",
			})
			return
		}

		if err != nil {
			// Idle timeout or EOF means the request is complete.
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				break
			}
			if err.Error() == "EOF" {
				break
			}
			log.Printf("error reading from connection: %v", err)
			return
		}
	}

	if len(data) == 0 {
		return
	}

	s.sendResponse(conn, s.process(data))
}

// process runs the processor and converts a panic into a 500 response, so
// one bad request cannot take the daemon down.
func (s *Server) process(data []byte) (response CommandResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic while processing request: %v", r)
			response = CommandResponse{
				Code:    500,
				Status:  "error",
				Message: fmt.Sprintf("Internal error: %v", r),
			}
		}
	}()

	return s.processor.ProcessRequest(data)
}

func (s *Server) sendResponse(conn net.Conn, response CommandResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("failed to marshal response: %v", err)
		return
	}

	if _, err := conn.Write(data); err != nil {
		log.Printf("failed to send response: %v", err)
	}
}

func GetStatusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 202:
		return "Accepted"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 409:
		return "Conflict"
	case 412:
		return "Precondition Failed"
	case 500:
		return "Internal Server Error"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
