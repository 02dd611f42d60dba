package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Server owns the resident endpoint.
type Server struct {
	log     zerolog.Logger
	handler Handler

	mu   sync.Mutex
	lis  net.Listener
	port int
}

func NewServer(handler Handler, logger zerolog.Logger) *Server {
	return &Server{handler: handler, log: logger.With().Str("cmp", "singleinstance").Logger()}
}

// Listen binds the first port of the range. Failure means another resident
// already owns it.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := portRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = lis.Addr().(*net.TCPAddr).Port
	s.log.Info().Str("addr", addr).Msg("listening")
	return nil
}

// Port returns the bound port, 0 before Listen.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Serve accepts requests until ctx is done. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()
	if lis == nil {
		return fmt.Errorf("singleinstance: Serve before Listen")
	}

	go func() {
		<-ctx.Done()
		_ = lis.Close()
	}()

	for {
		c, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handle(c)
	}
}

func (s *Server) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	if line == pingRequest {
		_, _ = c.Write([]byte(pongResponse))
		return
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		_, _ = c.Write([]byte(errResponse + err.Error()))
		return
	}
	s.log.Info().Str("command", string(cmd)).Str("remote", c.RemoteAddr().String()).Msg("delegated command")
	if err := s.handler(cmd); err != nil {
		_, _ = c.Write([]byte(errResponse + err.Error()))
		return
	}
	_, _ = c.Write([]byte(okResponse))
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis = nil
	return err
}
