package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mmuslimabdulj/goat-lobby/internal/config"
	"github.com/mmuslimabdulj/goat-lobby/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
	"github.com/mmuslimabdulj/goat-lobby/internal/usecase"
)

type Handler struct {
	hub      *ws.Hub
	coord    *usecase.Coordinator
	cfg      *config.Config
	log      *zap.Logger
	upgrader websocket.Upgrader
	started  time.Time
}

func NewHandler(hub *ws.Hub, coord *usecase.Coordinator, cfg *config.Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		hub:   hub,
		coord: coord,
		cfg:   cfg,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return cfg.OriginAllowed(r.Header.Get("Origin"))
			},
		},
		started: time.Now(),
	}
}

// HandleWebSocket upgrades HTTP to WebSocket and registers the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.log.Debug("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn)
	client.SetMaxMessageSize(h.cfg.MaxMessageSize)

	// Start the writer first so the connected frame queued by Register is flushed
	go client.WritePump()
	h.hub.Register(client)
	go client.ReadPump()
}

// HandleHealth reports liveness and basic counters
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": h.hub.ClientCount(),
		"sessions":    h.coord.SessionCount(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}

type memberSummary struct {
	ID     string `json:"sid"`
	Name   string `json:"name"`
	IsHost bool   `json:"is_host"`
}

type lobbySummary struct {
	ID          string           `json:"lobby_id"`
	Players     int              `json:"players"`
	MaxPlayers  int              `json:"max_players"`
	HostID      string           `json:"host_id"`
	GameStarted bool             `json:"game_started"`
	GameID      domain.CompatKey `json:"game_id"`
	LevelID     domain.CompatKey `json:"level_id"`
	Members     []memberSummary  `json:"members"`
}

func summarize(v domain.LobbyView) lobbySummary {
	members := make([]memberSummary, 0, v.Size())
	for _, s := range v.Members {
		members = append(members, memberSummary{ID: s.ID, Name: s.DisplayName, IsHost: s.IsHost})
	}
	return lobbySummary{
		ID:          v.ID,
		Players:     v.Size(),
		MaxPlayers:  v.Policy.MaxPlayers,
		HostID:      v.HostID,
		GameStarted: v.GameStarted,
		GameID:      v.Signature.GameID,
		LevelID:     v.Signature.LevelID,
		Members:     members,
	}
}

// HandleLobbies lists live lobbies in creation order
func (h *Handler) HandleLobbies(w http.ResponseWriter, r *http.Request) {
	views := h.coord.Lobbies()
	out := make([]lobbySummary, 0, len(views))
	for _, v := range views {
		out = append(out, summarize(v))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lobbies": out,
		"count":   len(out),
	})
}

// HandleStatus serves the operator status page
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := StatusPage(statusData{
		Connections: h.hub.ClientCount(),
		Uptime:      time.Since(h.started).Round(time.Second),
		Lobbies:     h.coord.Lobbies(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render status page", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
