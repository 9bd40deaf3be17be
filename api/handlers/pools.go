package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/openalpha/poolparty/api/types"
)

// PoolHandler serves the pool REST endpoints
type PoolHandler struct {
	service types.PoolService
	notify  ContributionNotifier
}

// ContributionNotifier receives successful contribution and withdrawal
// events, e.g. for WebSocket fan-out
type ContributionNotifier func(poolID, address, amount, kind, totalContributed string)

// NewPoolHandler creates a new pool handler
func NewPoolHandler(service types.PoolService) *PoolHandler {
	return &PoolHandler{service: service}
}

// SetNotifier installs the contribution event callback
func (h *PoolHandler) SetNotifier(fn ContributionNotifier) {
	h.notify = fn
}

// HandlePools handles GET /v1/pools and POST /v1/pools
func (h *PoolHandler) HandlePools(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listPools(w, r)
	case http.MethodPost:
		h.createPool(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *PoolHandler) listPools(w http.ResponseWriter, r *http.Request) {
	phase := r.URL.Query().Get("phase")

	pools, err := h.service.GetPools(phase)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	})
}

func (h *PoolHandler) createPool(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreatePool(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetPool handles GET /v1/pools/{id}
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	poolID := r.Header.Get("X-Pool-ID")
	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	pool, err := h.service.GetPool(poolID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pool)
}

// GetParticipants handles GET /v1/pools/{id}/participants
func (h *PoolHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	poolID := r.Header.Get("X-Pool-ID")
	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	participants, err := h.service.GetParticipants(poolID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id":      poolID,
		"participants": participants,
		"count":        len(participants),
	})
}

// GetContributionsDue handles GET /v1/pools/{id}/contributions-due/{address}
func (h *PoolHandler) GetContributionsDue(w http.ResponseWriter, r *http.Request) {
	poolID := r.Header.Get("X-Pool-ID")
	address := r.Header.Get("X-Participant-Address")
	if poolID == "" || address == "" {
		writeError(w, http.StatusBadRequest, "Pool ID and participant address required")
		return
	}

	due, err := h.service.GetContributionsDue(poolID, address)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, due)
}

// Contribute handles POST /v1/contribute
func (h *PoolHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req types.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PoolID == "" || req.Contributor == "" || req.Amount == "" {
		writeError(w, http.StatusBadRequest, "pool_id, contributor and amount are required")
		return
	}

	resp, err := h.service.Contribute(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.notify != nil {
		h.notify(req.PoolID, req.Contributor, req.Amount, "contribute", resp.TotalContributed)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Leave handles POST /v1/leave
func (h *PoolHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req types.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PoolID == "" || req.Participant == "" {
		writeError(w, http.StatusBadRequest, "pool_id and participant are required")
		return
	}

	resp, err := h.service.Leave(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.notify != nil {
		h.notify(req.PoolID, req.Participant, resp.RefundAmount, "leave", "")
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLeaderboard handles GET /v1/leaderboard
func (h *PoolHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	entries, err := h.service.GetLeaderboard(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
