package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Marceswan/driftpaper/internal/config"
	"github.com/Marceswan/driftpaper/internal/logger"
)

// Server is the localhost control API. It is an event-stream producer only:
// every request turns into a dispatcher event, never a direct session call.
type Server struct {
	router     *mux.Router
	dispatcher *Dispatcher
	prefs      *config.Manager
	upgrader   websocket.Upgrader
	httpSrv    *http.Server

	mu      sync.Mutex
	streams map[*websocket.Conn]struct{}
}

// NewServer creates the control API around a dispatcher.
func NewServer(dispatcher *Dispatcher, prefs *config.Manager) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		dispatcher: dispatcher,
		prefs:      prefs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Localhost-only server; the bind address is the boundary.
				return true
			},
		},
		streams: make(map[*websocket.Conn]struct{}),
	}
	s.setupRoutes()
	dispatcher.AddListener(s.broadcast)
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings/{option}", s.handlePutSetting).Methods("PUT")
	api.HandleFunc("/palette", s.handlePostPalette).Methods("POST")
	api.HandleFunc("/login", s.handlePostLogin).Methods("POST")
	api.HandleFunc("/quit", s.handlePostQuit).Methods("POST")
	api.HandleFunc("/events", s.handleEvents)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start serves the API on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	logger.WithComponent("control").Info().Str("addr", addr).Msg("Control API listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control API server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	s.mu.Lock()
	for conn := range s.streams {
		conn.Close()
	}
	s.streams = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.prefs.Get())
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["option"]
	opt, ok := OptionFromName(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown option %q", name), http.StatusNotFound)
		return
	}

	var body struct {
		Index uint32 `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.dispatcher.Dispatch(Event{Kind: EventSelectOption, Option: opt, Index: body.Index})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostPalette(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.ApplyImageStream(r.Body); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Dispatch(Event{Kind: EventToggleRunOnLogin})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostQuit(w http.ResponseWriter, r *http.Request) {
	s.dispatcher.Dispatch(Event{Kind: EventQuit})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleEvents upgrades to a websocket and pushes the preference document
// after every applied event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("control").Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.mu.Lock()
	s.streams[conn] = struct{}{}
	s.mu.Unlock()

	// Drain client frames until the connection dies.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.streams, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type streamMessage struct {
	Event    string             `json:"event"`
	Settings config.Preferences `json:"settings"`
}

func (s *Server) broadcast(ev Event) {
	msg := streamMessage{
		Event:    eventName(ev),
		Settings: s.prefs.Get(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.streams {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(s.streams, conn)
		}
	}
}

func eventName(ev Event) string {
	switch ev.Kind {
	case EventSelectOption:
		return "setting:" + ev.Option.String()
	case EventCustomImage:
		return "palette"
	case EventToggleRunOnLogin:
		return "login"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}
