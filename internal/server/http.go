// Package server wires the HTTP boundary: routing, JSON encoding and the
// error taxonomy (validation failures → 400 before any storage access,
// storage failures → 500 "try again").
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	channelservice "dm-relay/backend/internal/channel/service"
	"dm-relay/backend/internal/fanout"
	membershiprepository "dm-relay/backend/internal/membership/repository"
	messagedomain "dm-relay/backend/internal/message/domain"
	messagerepository "dm-relay/backend/internal/message/repository"
	"dm-relay/backend/internal/presence"
	"dm-relay/backend/internal/server/middleware"
	"dm-relay/backend/internal/telemetry"
	userdomain "dm-relay/backend/internal/user/domain"
	userrepository "dm-relay/backend/internal/user/repository"
)

// Pinger reports storage reachability for the readiness probe. Satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps carries everything the HTTP boundary needs.
type Deps struct {
	Users       userrepository.Repository
	Memberships membershiprepository.Repository
	Messages    messagerepository.Repository
	Resolver    *channelservice.Resolver
	Dispatcher  *fanout.Dispatcher
	Tracker     *presence.HeartbeatTracker
	// Session handles GET /ws. Optional; the route is omitted when nil.
	Session http.Handler
	DB      Pinger
	// Window is the heartbeat staleness window for GET /status.
	Window time.Duration
	// Emitter receives one http_request event per request. Optional.
	Emitter telemetry.EventEmitter
}

// Server is the HTTP boundary of the relay.
type Server struct {
	deps Deps
	now  func() time.Time
}

// New builds the relay's HTTP handler: all routes plus the telemetry middleware.
func New(deps Deps) http.Handler {
	s := &Server{deps: deps, now: time.Now}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /createUser/{userName}", s.handleCreateUser)
	mux.HandleFunc("GET /channel/{senderName}/{receiverName}", s.handleChannel)
	mux.HandleFunc("POST /channel/{senderName}/{receiverName}", s.handleChannel)
	mux.HandleFunc("POST /message/{senderId}/{channelId}", s.handleMessage)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.deps.Session != nil {
		mux.Handle("GET /ws", s.deps.Session)
	}
	// /ws is skipped: the upgrade hijacks the connection and the recorded
	// status would be meaningless.
	skip := map[string]bool{"/healthz": true, "/ws": true}
	return middleware.Telemetry(s.deps.Emitter, skip)(mux)
}

type userResponse struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
}

// handleCreateUser registers a display name. Idempotent: repeating a name
// returns the existing row.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	userName := strings.TrimSpace(r.PathValue("userName"))
	if err := (&userdomain.User{UserName: userName}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	existing, err := s.deps.Users.GetByName(r.Context(), userName)
	if err != nil {
		writeStorageError(w, "look up user", err)
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, userResponse{ID: existing.ID, UserName: existing.UserName})
		return
	}
	created, err := s.deps.Users.Create(r.Context(), userName, s.now().UTC())
	if err != nil {
		writeStorageError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: created.ID, UserName: created.UserName})
}

type channelCreatedResponse struct {
	ChannelID int64  `json:"channel_id"`
	Msg       string `json:"msg"`
}

type messageResponse struct {
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	ChannelID int64     `json:"channel_id"`
	Msg       string    `json:"msg"`
	CreatedAt time.Time `json:"created_at"`
}

// handleChannel resolves (or creates) the direct channel between two names.
// A fresh channel answers with its synthetic first message; an existing one
// answers with up to the last ten messages, newest first.
func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	senderName := strings.TrimSpace(r.PathValue("senderName"))
	receiverName := strings.TrimSpace(r.PathValue("receiverName"))
	if senderName == "" || receiverName == "" {
		writeError(w, http.StatusBadRequest, "sender and receiver names required")
		return
	}
	res, err := s.deps.Resolver.ResolveOrCreate(r.Context(), senderName, receiverName)
	if errors.Is(err, channelservice.ErrSelfChannel) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var unknown *channelservice.UnknownUserError
	if errors.As(err, &unknown) {
		writeError(w, http.StatusBadRequest, unknown.Error())
		return
	}
	if err != nil {
		writeStorageError(w, "resolve channel", err)
		return
	}
	if res.Created {
		writeJSON(w, http.StatusCreated, []channelCreatedResponse{{
			ChannelID: res.ChannelID,
			Msg:       res.SystemMessage.Msg,
		}})
		return
	}
	writeJSON(w, http.StatusOK, messagesToResponse(res.History))
}

type sendMessageRequest struct {
	Msg string `json:"msg"`
}

type sendMessageResponse struct {
	Msg string `json:"msg"`
}

// handleMessage persists a message and pushes it to the other channel
// members' live connections. Delivery is best-effort and never changes the
// response.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	senderID, err := strconv.ParseInt(r.PathValue("senderId"), 10, 64)
	if err != nil || senderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid sender id")
		return
	}
	channelID, err := strconv.ParseInt(r.PathValue("channelId"), 10, 64)
	if err != nil || channelID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid channel id")
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft := messagedomain.Message{
		SenderID:  senderID,
		ChannelID: channelID,
		Msg:       strings.TrimSpace(req.Msg),
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sender, err := s.deps.Users.GetByID(r.Context(), senderID)
	if err != nil {
		writeStorageError(w, "look up sender", err)
		return
	}
	if sender == nil {
		writeError(w, http.StatusBadRequest, "unknown sender")
		return
	}

	if _, err := s.deps.Messages.Create(r.Context(), senderID, channelID, req.Msg, s.now().UTC()); err != nil {
		writeStorageError(w, "persist message", err)
		return
	}

	members, err := s.deps.Memberships.ListByChannel(r.Context(), channelID)
	if err != nil {
		// The message is durable; only the push is lost.
		log.Printf("server: list members of channel %d: %v", channelID, err)
	} else if s.deps.Dispatcher != nil {
		memberIDs := make([]int64, 0, len(members))
		for _, m := range members {
			if m.UserID == senderID {
				continue
			}
			memberIDs = append(memberIDs, m.UserID)
		}
		s.deps.Dispatcher.Broadcast(r.Context(), channelID, memberIDs, senderID, sender.UserName, req.Msg)
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{Msg: req.Msg})
}

// handleStatus reports every known user's liveness: user rows from storage,
// staleness from the heartbeat tracker. Users never seen over a live
// connection read as offline.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Users.List(r.Context())
	if err != nil {
		writeStorageError(w, "list users", err)
		return
	}
	now := s.now()
	statuses := make(map[string]bool, len(users))
	for _, u := range users {
		statuses[u.UserName] = s.deps.Tracker.IsOnline(u.ID, now, s.deps.Window)
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func messagesToResponse(history []*messagedomain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(history))
	for _, m := range history {
		out = append(out, messageResponse{
			MessageID: m.MessageID,
			SenderID:  m.SenderID,
			ChannelID: m.ChannelID,
			Msg:       m.Msg,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStorageError logs the cause and answers with the uniform retry hint;
// storage details never leak to clients.
func writeStorageError(w http.ResponseWriter, op string, err error) {
	log.Printf("server: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "try again")
}
