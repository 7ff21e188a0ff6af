package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamcast/streamcast/internal/metrics"
	"github.com/streamcast/streamcast/internal/middleware"
	"github.com/streamcast/streamcast/internal/services/chat"
	"github.com/streamcast/streamcast/internal/services/streams"
	"github.com/streamcast/streamcast/internal/services/tips"
	"github.com/streamcast/streamcast/internal/services/users"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Deps carries the services the router exposes.
type Deps struct {
	Users   *users.Service
	Streams *streams.Service
	Tips    *tips.Service
	Chat    *chat.Service
	Log     *logger.Logger

	// TipLimiter throttles tip submissions; nil disables throttling.
	TipLimiter *middleware.RateLimiter

	// AllowedOrigins configures CORS; empty defaults to allow-all.
	AllowedOrigins []string
}

// NewRouter builds the REST API router with logging, CORS and metrics
// middleware applied to every route.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{
		users:   deps.Users,
		streams: deps.Streams,
		tips:    deps.Tips,
		chat:    deps.Chat,
		log:     log,
	}

	r := mux.NewRouter()

	r.HandleFunc("/streams", h.listStreams).Methods(http.MethodGet)
	r.HandleFunc("/streams", h.createStream).Methods(http.MethodPost)
	r.HandleFunc("/streams/{id}", h.getStream).Methods(http.MethodGet)
	r.HandleFunc("/streams/{id}", h.updateStream).Methods(http.MethodPut)
	r.HandleFunc("/streams/{id}", h.deleteStream).Methods(http.MethodDelete)

	r.HandleFunc("/streams/{id}/chat", h.listChat).Methods(http.MethodGet)
	r.HandleFunc("/streams/{id}/chat", h.postChat).Methods(http.MethodPost)
	r.HandleFunc("/streams/{id}/chat/ws", h.chatSocket).Methods(http.MethodGet)

	r.HandleFunc("/users/{address}", h.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{address}", h.updateUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{address}/follows", h.listFollows).Methods(http.MethodGet)

	r.HandleFunc("/follows", h.createFollow).Methods(http.MethodPost)
	r.HandleFunc("/follows", h.deleteFollow).Methods(http.MethodDelete)

	var createTip http.Handler = http.HandlerFunc(h.createTip)
	if deps.TipLimiter != nil {
		createTip = deps.TipLimiter.Handler(createTip)
	}
	r.Handle("/tips", createTip).Methods(http.MethodPost)
	r.HandleFunc("/tips/{address}", h.tipHistory).Methods(http.MethodGet)

	r.HandleFunc("/leaderboard", h.leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	chain := middleware.NewRequestLogger(log).Handler(r)
	chain = middleware.NewCORSMiddleware(origins).Handler(chain)
	chain = metrics.InstrumentHandler(chain)
	return chain
}
