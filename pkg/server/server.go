// Package server accepts TCP (or TLS) connections and answers HTTP/1.1 requests on them
// using an ordered list of routers.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Suhaibinator/SServer/pkg/codec"
	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/metrics"
	"github.com/Suhaibinator/SServer/pkg/router"
	"go.uber.org/zap"
)

// DefaultReadBufferSize is the size of the per-connection read buffer. A request larger
// than this is cut at the buffer boundary.
const DefaultReadBufferSize = 30 * 1024

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown.
var ErrServerClosed = errors.New("server: closed")

// ServerConfig configures a Server.
type ServerConfig struct {
	Logger *zap.Logger // Logger for connection and I/O events

	// Workers, when positive, sets GOMAXPROCS before serving.
	Workers int

	// ReadBufferSize is the per-connection buffer; one read fills it with at most one request.
	ReadBufferSize int

	// Metrics records connections and parse errors (optional)
	Metrics *metrics.Collector
}

// Server drives connections. Routers are added during setup and tried in the order
// they were added; the first one that produces a response wins.
type Server struct {
	config  ServerConfig
	logger  *zap.Logger
	routers []*router.Router
	bufPool sync.Pool

	mu         sync.Mutex
	listeners  map[net.Listener]struct{}
	conns      map[*conn]struct{}
	inShutdown atomic.Bool
	wg         sync.WaitGroup
}

// New creates a Server with the given configuration.
func New(config ServerConfig) *Server {
	logger := config.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
	}
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = DefaultReadBufferSize
	}

	s := &Server{
		config:    config,
		logger:    logger,
		listeners: make(map[net.Listener]struct{}),
		conns:     make(map[*conn]struct{}),
	}
	size := config.ReadBufferSize
	s.bufPool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return s
}

// AddRouter appends r to the routers tried for every request.
// It must not be called once the server is serving.
func (s *Server) AddRouter(r *router.Router) {
	s.routers = append(s.routers, r)
}

// ListenAndServe listens on the TCP address addr and serves connections until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// ListenAndServeTLS is like ListenAndServe but performs a TLS handshake on every connection.
func (s *Server) ListenAndServeTLS(addr string, config *tls.Config) error {
	if config == nil {
		return errors.New("server: nil TLS config")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(tls.NewListener(ln, config))
}

// Serve accepts connections on ln and handles each one in its own goroutine.
// It always returns a non-nil error and closes ln.
func (s *Server) Serve(ln net.Listener) error {
	if !s.trackListener(ln, true) {
		ln.Close()
		return ErrServerClosed
	}
	defer s.trackListener(ln, false)

	if s.config.Workers > 0 {
		runtime.GOMAXPROCS(s.config.Workers)
	}

	s.logger.Info("Server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("routers", len(s.routers)),
	)

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if backoff == 0 {
					backoff = 5 * time.Millisecond
				} else {
					backoff *= 2
				}
				if backoff > time.Second {
					backoff = time.Second
				}
				s.logger.Warn("Accept error, retrying",
					zap.Error(err),
					zap.Duration("backoff", backoff),
				)
				time.Sleep(backoff)
				continue
			}
			s.logger.Error("Accept failed", zap.Error(err))
			return err
		}
		backoff = 0

		c := &conn{Conn: nc}
		c.idle.Store(true)
		if !s.trackConn(c, true) {
			// Accepted after Shutdown closed the listener
			nc.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.wg.Done()
			defer s.trackConn(c, false)
			defer c.Close()

			if s.config.Metrics != nil {
				s.config.Metrics.ConnectionOpened()
				defer s.config.Metrics.ConnectionClosed()
			}
			s.serve(c, c, nc.RemoteAddr().String())
		}()
	}
}

// ServeConn runs the request loop on rw until the peer closes it or an I/O error occurs.
// The caller owns rw and closes it afterwards.
func (s *Server) ServeConn(rw io.ReadWriter, remoteAddr string) {
	s.serve(rw, nil, remoteAddr)
}

// serve is the per-connection loop: one read is parsed as one request and answered with
// one response. c, when not nil, is marked idle while waiting for the next request.
func (s *Server) serve(rw io.ReadWriter, c *conn, remoteAddr string) {
	bufp := s.bufPool.Get().(*[]byte)
	defer s.bufPool.Put(bufp)
	buf := *bufp

	s.logger.Debug("Connection opened", zap.String("remote_addr", remoteAddr))
	defer s.logger.Debug("Connection closed", zap.String("remote_addr", remoteAddr))

	for {
		if c != nil {
			c.idle.Store(true)
		}
		n, err := rw.Read(buf)
		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Failed to read from connection",
					zap.Error(err),
					zap.String("remote_addr", remoteAddr),
				)
			}
			return
		}
		if c != nil {
			c.idle.Store(false)
		}

		resp := s.respond(buf[:n], remoteAddr)
		if werr := codec.WriteResponse(rw, resp); werr != nil {
			s.logger.Error("Failed to write response",
				zap.Error(werr),
				zap.String("remote_addr", remoteAddr),
			)
			return
		}

		// A read that returned data and an error still ends the connection
		if err != nil || s.inShutdown.Load() {
			return
		}
	}
}

// respond parses chunk and produces the response for it.
func (s *Server) respond(chunk []byte, remoteAddr string) *common.Response {
	req, err := codec.ParseRequest(chunk)
	if err != nil {
		s.logger.Debug("Bad request",
			zap.Error(err),
			zap.String("remote_addr", remoteAddr),
		)
		if s.config.Metrics != nil {
			s.config.Metrics.ParseError()
		}
		var pe *codec.ParseError
		if errors.As(err, &pe) {
			return pe.Response()
		}
		return common.BadRequest()
	}
	req.RemoteAddr = remoteAddr

	for _, r := range s.routers {
		if resp, ok := r.HandleRequest(req); ok {
			return resp
		}
	}
	return common.NotFound()
}

// Shutdown stops accepting connections, closes idle ones and waits for the rest to finish
// their current request. If ctx ends first, every remaining connection is closed and the
// context's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	for ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("Failed to close listener", zap.Error(err))
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.closeConns(false)
		select {
		case <-done:
			s.logger.Info("Server stopped")
			return nil
		case <-ctx.Done():
			s.closeConns(true)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// closeConns closes idle connections, or all of them when force is set.
func (s *Server) closeConns(force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		if force || c.idle.Load() {
			c.Close()
		}
	}
}

// trackListener adds or removes ln. Adding reports false once Shutdown has begun.
func (s *Server) trackListener(ln net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.inShutdown.Load() {
			return false
		}
		s.listeners[ln] = struct{}{}
		return true
	}
	delete(s.listeners, ln)
	ln.Close()
	return true
}

// trackConn adds or removes c. Adding reports false once Shutdown has begun; otherwise
// it also counts c in s.wg, under s.mu so Shutdown never waits on a counter that can
// still grow.
func (s *Server) trackConn(c *conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.inShutdown.Load() {
			return false
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		return true
	}
	delete(s.conns, c)
	return true
}

// conn is an accepted connection with its idle flag.
type conn struct {
	net.Conn
	idle atomic.Bool
}
