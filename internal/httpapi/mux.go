package httpapi

import (
	"database/sql"
	"net/http"
)

func NewMux(db *sql.DB, staticDir string, feed FeedState, broker BrokerState) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, feed, broker)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return mux
}
