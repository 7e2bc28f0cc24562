// Package rpcserver wraps github.com/ethereum/go-ethereum/rpc.Server with
// the HTTP transport conventions go-ethereum's node package uses for its
// own JSON-RPC endpoint: httprouter for the mux, rs/cors for browser
// clients, a generous request body cap (witnesses and proofs are large),
// and a long write/read timeout (derivation and proving are slow).
package rpcserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// MaxRequestBodySize bounds a single JSON-RPC request body; witnesses are
// large binary payloads hex-encoded into a single JSON string.
const MaxRequestBodySize = 200 * 1024 * 1024

// RequestTimeout bounds how long a single HTTP request may run; proving
// and derivation are both slow, so this is measured in hours, not seconds.
const RequestTimeout = 3 * time.Hour

// Config controls how Server binds and serves.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server hosts one JSON-RPC namespace over HTTP.
type Server struct {
	cfg    Config
	rpc    *gethrpc.Server
	http   *http.Server
	router *httprouter.Router
}

// New builds a Server. Register namespaces with RegisterName before
// calling Start.
func New(cfg Config) *Server {
	rpc := gethrpc.NewServer()
	rpc.SetBatchLimits(0, MaxRequestBodySize)

	router := httprouter.New()
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOriginsOrWildcard(cfg.AllowedOrigins),
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(http.MaxBytesHandler(rpc, MaxRequestBodySize))

	router.Handler(http.MethodPost, "/", corsHandler)
	router.Handler(http.MethodOptions, "/", corsHandler)

	s := &Server{
		cfg:    cfg,
		rpc:    rpc,
		router: router,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  RequestTimeout,
			WriteTimeout: RequestTimeout,
		},
	}
	router.Handler(http.MethodGet, "/ws", s.WebsocketHandler())
	return s
}

func allowedOriginsOrWildcard(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// RegisterName exposes a service's methods under namespace, following
// go-ethereum/rpc's reflection-based method discovery (exported methods
// become namespace_methodName).
func (s *Server) RegisterName(namespace string, service interface{}) error {
	return s.rpc.RegisterName(namespace, service)
}

// Start binds the listening socket and serves until ctx is done or Stop is
// called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listen on %s: %w", s.cfg.Addr, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			log.Error("rpc server shutdown error", "err", err)
		}
	}()

	log.Info("rpc server listening", "addr", s.cfg.Addr)
	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("rpcserver: serve: %w", err)
	}
	return nil
}

// Stop closes the underlying rpc.Server, releasing any codec state.
func (s *Server) Stop() {
	s.rpc.Stop()
}
