package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/mazerooms/game/config"
	"github.com/wricardo/mazerooms/game/maze"
	"github.com/wricardo/mazerooms/game/room"
	"github.com/wricardo/mazerooms/transport/websocket"
	"go.uber.org/zap"
)

// RoomDirectory is the read-only view of live rooms the API needs
type RoomDirectory interface {
	Stats() room.Stats
	Room(id string) (*room.Room, error)
}

// ProfileSource lists and loads maze profiles
type ProfileSource interface {
	ListProfiles() ([]*config.ProfileInfo, error)
	LoadProfile(name string) (*config.Profile, error)
}

// Server represents the REST API server
type Server struct {
	directory RoomDirectory
	profiles  ProfileSource
	hub       *websocket.Hub
	router    *mux.Router
	logger    *zap.SugaredLogger
}

// NewServer creates a new API server
func NewServer(directory RoomDirectory, profiles ProfileSource, hub *websocket.Hub, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		directory: directory,
		profiles:  profiles,
		hub:       hub,
		router:    mux.NewRouter(),
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/connect", s.handleConnect).Methods("GET")

	// Rooms
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")

	// Profiles
	api.HandleFunc("/profiles", s.handleListProfiles).Methods("GET")
	api.HandleFunc("/profiles/{name}/preview", s.handlePreviewProfile).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
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

// StatusResponse summarizes server occupancy
type StatusResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// RoomSummary is one entry of the room listing
type RoomSummary struct {
	PlayerCount int  `json:"playerCount"`
	IsFull      bool `json:"isFull"`
}

// RoomsResponse maps room id to its summary
type RoomsResponse struct {
	Rooms map[string]RoomSummary `json:"rooms"`
}

// RoomDetail is the full read-only view of one room
type RoomDetail struct {
	room.RoomStatus
	Rows int           `json:"rows"`
	Cols int           `json:"cols"`
	Exit maze.Position `json:"exit"`
}

// PreviewResponse is a freshly generated maze for a profile
type PreviewResponse struct {
	Profile      string `json:"profile"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	Obstacles    int    `json:"obstacles"`
	Attempts     int    `json:"attempts"`
	Degenerate   bool   `json:"degenerate"`
	ShortestPath int    `json:"shortestPath"`
	Render       string `json:"render"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.directory.Stats()
	respondJSON(w, http.StatusOK, StatusResponse{
		ActiveRooms:  stats.ActiveRooms,
		TotalPlayers: stats.TotalPlayers,
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	stats := s.directory.Stats()
	resp := RoomsResponse{Rooms: make(map[string]RoomSummary, len(stats.Rooms))}
	for _, rs := range stats.Rooms {
		resp.Rooms[rs.ID] = RoomSummary{PlayerCount: rs.ParticipantCount, IsFull: rs.IsFull}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	rm, err := s.directory.Room(roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	m := rm.Maze()
	respondJSON(w, http.StatusOK, RoomDetail{
		RoomStatus: rm.Status(),
		Rows:       m.Rows,
		Cols:       m.Cols,
		Exit:       m.Exit,
	})
}

// handleConnect tells clients where to open the websocket.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	scheme := "ws"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "wss"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"url": scheme + "://" + r.Host + "/ws",
	})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.ListProfiles()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profiles == nil {
		profiles = []*config.ProfileInfo{}
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (s *Server) handlePreviewProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	profile, err := s.profiles.LoadProfile(name)
	if err != nil {
		if errors.Is(err, config.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var opts []maze.Option
	if seedStr := r.URL.Query().Get("seed"); seedStr != "" {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "seed must be a non-negative integer")
			return
		}
		opts = append(opts, maze.WithSeed(seed))
	}

	gen, err := profile.NewGenerator(s.logger, opts...)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	m := gen.Generate()
	respondJSON(w, http.StatusOK, PreviewResponse{
		Profile:      name,
		Rows:         m.Rows,
		Cols:         m.Cols,
		Obstacles:    m.WallCount(),
		Attempts:     m.Attempts,
		Degenerate:   m.Degenerate,
		ShortestPath: maze.ShortestPath(m.Grid, m.Entry, m.Exit),
		Render:       m.Render(nil),
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket hub not running")
		return
	}
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
