package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"cockpit-server/internal/utils"
)

// FeedState reports whether the max-N1 feed is currently connected.
type FeedState interface {
	Connected() bool
}

// BrokerState reports the event broker connection.
type BrokerState interface {
	Enabled() bool
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db     *sql.DB
	feed   FeedState
	broker BrokerState
}

func NewHealthchecker(db *sql.DB, feed FeedState, broker BrokerState) healthchecker {
	return &healthcheckerImpl{db: db, feed: feed, broker: broker}
}

// handleHealthz fails only on the database. The feed and broker are
// reported but the console stays usable without them.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"max_n1": h.feedStatus(),
		"mqtt":   h.brokerStatus(),
	})
}

func (h *healthcheckerImpl) feedStatus() string {
	if h.feed == nil {
		return "disabled"
	}
	if h.feed.Connected() {
		return "connected"
	}
	return "disconnected"
}

func (h *healthcheckerImpl) brokerStatus() string {
	if h.broker == nil || !h.broker.Enabled() {
		return "disabled"
	}
	if h.broker.IsConnected() {
		return "connected"
	}
	return "disconnected"
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, feed FeedState, broker BrokerState) {
	healthchecker := NewHealthchecker(db, feed, broker)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
