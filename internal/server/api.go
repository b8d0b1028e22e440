package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/lobby"
	"github.com/palemoky/property-tycoon/internal/protocol"
	"github.com/palemoky/property-tycoon/internal/server/identity"
)

// maxBodySize 请求体上限
const maxBodySize = 64 << 10

type playerKey struct{}

// requireAuth 校验 Bearer 令牌并把玩家放入 context
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := s.identity.Verify(identity.FromHeader(r.Header.Get("Authorization")))
		if err != nil {
			writeError(w, apperrors.ErrUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), playerKey{}, player)))
	}
}

func playerFrom(ctx context.Context) identity.Player {
	p, _ := ctx.Value(playerKey{}).(identity.Player)
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.IsMaintenanceMode() {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleSession 签发访客令牌
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req protocol.SessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	token, player, err := s.identity.Issue(req.Name)
	if err != nil {
		writeError(w, &apperrors.GameError{Code: protocol.ErrCodeInvalidMsg, Message: err.Error()})
		return
	}
	log.Printf("✅ 玩家 %s (%s) 已登录", player.Name, player.ID)
	writeJSON(w, http.StatusCreated, protocol.SessionResponse{
		Token:     token,
		PlayerID:  player.ID,
		Name:      player.Name,
		ExpiresAt: player.ExpiresAt,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := s.games.ListGames()
	out := make([]protocol.GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, summary(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if s.IsMaintenanceMode() {
		writeError(w, &apperrors.GameError{Code: protocol.ErrCodeServerMaintenance, Message: protocol.ErrorMessages[protocol.ErrCodeServerMaintenance]})
		return
	}
	g := s.games.CreateGame()
	log.Printf("🎲 玩家 %s 创建游戏 %s", playerFrom(r.Context()).Name, g.ID)
	writeJSON(w, http.StatusCreated, summary(g.Summary()))
}

// handleEvents 长轮询：没有新事件时最多等待 timeout 秒
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()
	skip, err1 := intParam(q.Get("skip"), 0)
	limit, err2 := intParam(q.Get("limit"), s.config.Game.PageLimit)
	timeout, err3 := intParam(q.Get("timeout"), 0)
	if err := errors.Join(err1, err2, err3); err != nil || skip < 0 {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	if limit <= 0 || limit > s.config.Game.PageLimit {
		limit = s.config.Game.PageLimit
	}

	version, events, err := s.games.Events(r.Context(), id, skip, limit, time.Duration(timeout)*time.Second)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.EventsPayload{GameID: id, From: skip, Version: version, Events: events})
}

// handleCommand 提交命令，执行者以令牌中的玩家为准
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	version, err := strconv.Atoi(r.URL.Query().Get("version"))
	if err != nil {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	cmd, err := command.Unmarshal(body)
	if err != nil {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}

	res, err := s.games.Submit(r.Context(), id, stamp(cmd, playerFrom(r.Context())), version)
	writeJSON(w, statusOf(err), result(res, err))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	view, err := s.games.View(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("player"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, apperrors.ErrInvalidMessage)
		return
	}
	standings, err := s.games.Standings(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]protocol.StandingEntry, 0, len(standings))
	for _, st := range standings {
		out = append(out, protocol.StandingEntry{Rank: st.Rank, PlayerID: st.PlayerID, NetWorth: st.NetWorth})
	}
	writeJSON(w, http.StatusOK, out)
}

// stamp makes the authenticated player the actor. A join without a name
// uses the name from the token.
func stamp(cmd command.Command, player identity.Player) command.Command {
	cmd = cmd.WithActor(player.ID)
	if join, ok := cmd.(command.AddPlayer); ok && join.Name == "" {
		join.Name = player.Name
		return join
	}
	return cmd
}

func result(res lobby.Result, err error) protocol.ResultPayload {
	if err != nil {
		return protocol.ResultPayload{Version: res.Version, Error: errorPayload(err)}
	}
	return protocol.ResultPayload{Success: true, Version: res.Version, Events: res.Events}
}

func summary(g lobby.Summary) protocol.GameSummary {
	return protocol.GameSummary{
		ID:         g.ID,
		Players:    g.Players,
		Started:    g.Started,
		Version:    g.Version,
		LastActive: g.LastActive,
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func errorPayload(err error) *protocol.ErrorPayload {
	code := apperrors.Code(err)
	msg := err.Error()
	if code == protocol.ErrCodeUnknown {
		// 内部错误不外泄
		log.Printf("内部错误: %v", err)
		code, msg = protocol.ErrCodeStorage, protocol.ErrorMessages[protocol.ErrCodeStorage]
	}
	return &protocol.ErrorPayload{Code: code, Message: msg}
}

func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperrors.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrIllegalCommand):
		return http.StatusUnprocessableEntity
	case apperrors.Code(err) == protocol.ErrCodeServerMaintenance:
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorPayload(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写入响应失败: %v", err)
	}
}
