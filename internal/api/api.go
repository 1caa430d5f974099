// Package api provides HTTP handlers and the main API server logic for
// Innkeeper.
//
// It exposes the WhatsApp webhook endpoints plus diagnostic endpoints for
// session and history inspection. The API integrates with the session,
// responder, messaging, and genai modules.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/bot"
	"github.com/karthik-pvr/innkeeper/internal/genai"
	"github.com/karthik-pvr/innkeeper/internal/messaging"
	"github.com/karthik-pvr/innkeeper/internal/responder"
	"github.com/karthik-pvr/innkeeper/internal/session"
	"github.com/karthik-pvr/innkeeper/internal/util"
)

// Default configuration constants
const (
	// DefaultAddr is the default API server listen address.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful server shutdown.
	DefaultShutdownTimeout = 5 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	VerifyToken string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the server listen address (overrides $API_ADDR).
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the webhook verification secret (overrides
// $WHATSAPP_VERIFY_TOKEN).
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// Server wires the session tracker, message pipeline, and HTTP endpoints.
type Server struct {
	tracker     session.Tracker
	msgHandler  *bot.Handler
	verifyToken string
	addr        string
	startTime   time.Time
	httpServer  *http.Server
}

// NewServer creates an API server around the given session tracker and
// message handler.
func NewServer(tracker session.Tracker, msgHandler *bot.Handler, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		tracker:     tracker,
		msgHandler:  msgHandler,
		verifyToken: cfg.VerifyToken,
		addr:        cfg.Addr,
		startTime:   time.Now(),
	}
}

// routes builds the HTTP mux for the server.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/guests/", s.guestHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.routes()}
	slog.Info("Server.Start: API server listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	slog.Info("Server.Stop: shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// GeneratedVerifyTokenLength is the length of the webhook verify token
// generated when none is configured.
const GeneratedVerifyTokenLength = 32

// Run constructs the full webhook service from module options and serves
// until the process exits. The GenAI client and outbound transport are
// both optional: without an OpenAI key replies come from the rule-based
// fallback, and without transport credentials delivery reports failure
// without attempting a call. Setting USE_TWILIO=true selects the Twilio
// transport instead of the Cloud API.
func Run(msgOpts []messaging.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	tracker := session.NewMemoryTracker()

	var respOpts []responder.Option
	gaClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("Run: GenAI client unavailable, replies will use the rule-based fallback", "error", err)
	} else {
		respOpts = append(respOpts, responder.WithGenAI(gaClient))
	}
	rsp := responder.New(tracker, respOpts...)

	transport := buildTransport(msgOpts)

	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.VerifyToken == "" {
		token := util.GenerateRandomAlphaNumeric(GeneratedVerifyTokenLength)
		slog.Warn("Run: no webhook verify token configured, generated one for this process", "verify_token", token)
		apiOpts = append(apiOpts, WithVerifyToken(token))
	}

	msgHandler := bot.NewHandler(tracker, rsp, transport)
	server := NewServer(tracker, msgHandler, apiOpts...)
	return server.Start()
}

// buildTransport selects and constructs the outbound messaging service.
func buildTransport(msgOpts []messaging.Option) messaging.Service {
	if util.ParseBoolEnv("USE_TWILIO", false) {
		tw, err := messaging.NewTwilioService()
		if err != nil {
			slog.Warn("buildTransport: Twilio transport unavailable, delivery disabled", "error", err)
			return messaging.NewDisabledService()
		}
		slog.Info("buildTransport: using Twilio transport")
		return tw
	}
	cloud, err := messaging.NewCloudAPIService(msgOpts...)
	if err != nil {
		slog.Warn("buildTransport: Cloud API transport unavailable, delivery disabled", "error", err)
		return messaging.NewDisabledService()
	}
	return cloud
}
