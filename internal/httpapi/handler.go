// Package httpapi exposes the REST surface: streams, users, tips, follows
// and chat, plus health and metrics endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/streamcast/streamcast/internal/domain/stream"
	"github.com/streamcast/streamcast/internal/domain/user"
	"github.com/streamcast/streamcast/internal/services/chat"
	"github.com/streamcast/streamcast/internal/services/streams"
	"github.com/streamcast/streamcast/internal/services/tips"
	"github.com/streamcast/streamcast/internal/services/users"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/pkg/logger"
)

const defaultLeaderboardSize = 10

// handler bundles HTTP endpoints for the application services.
type handler struct {
	users   *users.Service
	streams *streams.Service
	tips    *tips.Service
	chat    *chat.Service
	log     *logger.Logger
}

// Streams

func (h *handler) listStreams(w http.ResponseWriter, r *http.Request) {
	list, err := h.streams.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Streams not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createStream(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title          string `json:"title"`
		CreatorAddress string `json:"creatorAddress"`
		Category       string `json:"category"`
		Thumbnail      string `json:"thumbnail"`
		Description    string `json:"description"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.streams.Create(r.Context(), streams.CreateParams{
		Title:          payload.Title,
		CreatorAddress: payload.CreatorAddress,
		Category:       payload.Category,
		Thumbnail:      payload.Thumbnail,
		Description:    payload.Description,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *handler) getStream(w http.ResponseWriter, r *http.Request) {
	s, err := h.streams.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "Stream not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) updateStream(w http.ResponseWriter, r *http.Request) {
	var upd stream.Update
	if err := decodeJSON(r.Body, &upd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.streams.Update(r.Context(), mux.Vars(r)["id"], upd)
	if err != nil {
		h.writeServiceError(w, err, "Stream not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteStream(w http.ResponseWriter, r *http.Request) {
	if err := h.streams.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err, "Stream not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Users

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	// Profiles are created on first sight of an address, so a GET never 404s
	// for a well-formed address.
	u, err := h.users.Ensure(r.Context(), mux.Vars(r)["address"], false)
	if err != nil {
		h.writeServiceError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var upd user.ProfileUpdate
	if err := decodeJSON(r.Body, &upd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.users.UpdateProfile(r.Context(), mux.Vars(r)["address"], upd)
	if err != nil {
		h.writeServiceError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) listFollows(w http.ResponseWriter, r *http.Request) {
	follows, err := h.users.Follows(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, follows)
}

func (h *handler) createFollow(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FollowerAddress  string `json:"followerAddress"`
		FollowingAddress string `json:"followingAddress"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	follow, err := h.users.Follow(r.Context(), payload.FollowerAddress, payload.FollowingAddress)
	if err != nil {
		if errors.Is(err, storage.ErrFollowExists) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, follow)
}

func (h *handler) deleteFollow(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FollowerAddress  string `json:"followerAddress"`
		FollowingAddress string `json:"followingAddress"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.users.Unfollow(r.Context(), payload.FollowerAddress, payload.FollowingAddress); err != nil {
		h.writeServiceError(w, err, "Follow not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	board, err := h.users.Leaderboard(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err, "Leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Tips

func (h *handler) createTip(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FromAddress string  `json:"fromAddress"`
		ToAddress   string  `json:"toAddress"`
		Amount      float64 `json:"amount"`
		TxHash      string  `json:"txHash"`
		StreamID    string  `json:"streamId"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.tips.Create(r.Context(), tips.CreateParams{
		FromAddress: payload.FromAddress,
		ToAddress:   payload.ToAddress,
		Amount:      payload.Amount,
		TxHash:      payload.TxHash,
		StreamID:    payload.StreamID,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *handler) tipHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.tips.History(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err, "Tips not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Chat

func (h *handler) listChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "Stream not found")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handler) postChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserAddress string  `json:"userAddress"`
		Message     string  `json:"message"`
		IsTip       bool    `json:"isTip"`
		TipAmount   float64 `json:"tipAmount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	msg, err := h.chat.Post(r.Context(), mux.Vars(r)["id"], chat.PostParams{
		UserAddress: payload.UserAddress,
		Message:     payload.Message,
		IsTip:       payload.IsTip,
		TipAmount:   payload.TipAmount,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("Stream not found"))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Health

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps a service failure onto the wire: missing records
// return 404 with a resource-specific message, anything else is a generic 500
// so internal details never leak to clients.
func (h *handler) writeServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New(notFoundMsg))
		return
	}
	h.log.WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, errors.New("Internal server error"))
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
