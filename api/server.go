package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
	"github.com/wricardo/royal-game-of-ur/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Lobby state
	api.HandleFunc("/players", s.handleListPlayers).Methods("GET")
	api.HandleFunc("/challenges", s.handleListChallenges).Methods("GET")

	// Game state and operations
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}/roll", s.handleRoll).Methods("POST")
	api.HandleFunc("/games/{id}/move", s.handleMove).Methods("POST")

	// Health check
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}

	// Static files for the web client
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Lobby Handlers

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players := s.service.OnlinePlayers(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges := s.service.Challenges(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(challenges),
		"challenges": challenges,
	})
}

// Game Handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.service.Games(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	view, err := s.service.Game(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		PlayerID engine.PlayerID `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Roll(r.Context(), req.PlayerID, gameID); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	view, err := s.service.Game(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req struct {
		PlayerID engine.PlayerID    `json:"playerId"`
		Track    service.TrackIndex `json:"track"`
		Lane     string             `json:"lane"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Move(r.Context(), req.PlayerID, gameID, int(req.Track), req.Lane); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	view, err := s.service.Game(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// statusForError maps service errors to HTTP status codes. Rule
// violations are client errors; unknown games are 404s.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotParticipant):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
