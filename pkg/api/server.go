package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bylinehq/byline/pkg/comments"
	"github.com/bylinehq/byline/pkg/httputil"
	"github.com/bylinehq/byline/pkg/middleware"
	"github.com/bylinehq/byline/pkg/observability"
	"github.com/bylinehq/byline/pkg/posts"
)

// maxRequestBody caps request payload size
const maxRequestBody = 1 << 20 // 1 MiB

// Options configures the API server
type Options struct {
	Logger        *observability.Logger
	Metrics       *observability.Metrics
	Authenticator middleware.TokenAuthenticator
	AuthService   AuthService
	Posts         posts.Store
	Comments      comments.Store

	TracingEnabled bool
	ServiceName    string
	AllowedOrigins []string
}

// Server is the API server
type Server struct {
	router  *mux.Router
	opts    Options
	logger  *observability.Logger
	metrics *observability.Metrics

	optionalAuth *middleware.AuthMiddleware
	requiredAuth *middleware.AuthMiddleware
}

// NewServer creates a new API server and registers all routes
func NewServer(opts Options) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		opts:         opts,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		optionalAuth: middleware.NewAuthMiddleware(opts.Authenticator, true),
		requiredAuth: middleware.NewAuthMiddleware(opts.Authenticator, false),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	authHandlers := NewAuthHandlers(s.opts.AuthService, s.logger)
	postHandlers := NewPostHandlers(s.opts.Posts, s.metrics, s.logger)
	commentHandlers := NewCommentHandlers(s.opts.Comments, s.opts.Posts, s.metrics, s.logger)

	// Auth routes. Registration and login are unauthenticated; token
	// management requires a valid token.
	s.router.HandleFunc("/auth/register", authHandlers.register).Methods("POST")
	s.router.HandleFunc("/auth/login", authHandlers.login).Methods("POST")
	s.router.Handle("/auth/tokens", s.required(authHandlers.createToken)).Methods("POST")
	s.router.Handle("/auth/tokens", s.required(authHandlers.listTokens)).Methods("GET")
	s.router.Handle("/auth/tokens/{id}", s.required(authHandlers.revokeToken)).Methods("DELETE")

	// Post routes. Reads accept anonymous callers; writes do not.
	s.router.Handle("/posts", s.optional(postHandlers.listPosts)).Methods("GET")
	s.router.Handle("/posts/{id}", s.optional(postHandlers.getPost)).Methods("GET")
	s.router.Handle("/posts", s.required(postHandlers.createPost)).Methods("POST")
	s.router.Handle("/posts/{id}", s.required(postHandlers.updatePost)).Methods("PATCH", "PUT")
	s.router.Handle("/posts/{id}", s.required(postHandlers.deletePost)).Methods("DELETE")

	// Comment routes all require authentication, including reads.
	s.router.Handle("/posts/{id}/comments", s.required(commentHandlers.listComments)).Methods("GET")
	s.router.Handle("/posts/{id}/comments", s.required(commentHandlers.createComment)).Methods("POST")
	s.router.Handle("/comments/{id}", s.required(commentHandlers.deleteComment)).Methods("DELETE")
}

func (s *Server) optional(h http.HandlerFunc) http.Handler {
	return s.optionalAuth.Handler(h)
}

func (s *Server) required(h http.HandlerFunc) http.Handler {
	return s.requiredAuth.Handler(h)
}

// Router returns the bare route table, without the middleware chain
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped in the full middleware chain
func (s *Server) Handler() http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware,
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware,
		httputil.MaxBytesMiddleware(maxRequestBody),
	}

	if s.metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(s.metrics))
	}
	if s.opts.TracingEnabled {
		middlewares = append(middlewares, observability.TracingMiddleware(s.opts.ServiceName))
	}
	if len(s.opts.AllowedOrigins) > 0 {
		middlewares = append(middlewares, httputil.CORSMiddleware(s.opts.AllowedOrigins))
	}

	return httputil.Chain(middlewares...)(s.router)
}
