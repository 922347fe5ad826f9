package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scythe504/bingo-backend/internal"
	"github.com/scythe504/bingo-backend/internal/bingo"
	"github.com/scythe504/bingo-backend/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/healthz", s.HealthHandler)
	r.HandleFunc("/rooms-available", s.GetRoomToJoin)
	r.HandleFunc("/cards/{cardId}", s.GetCard).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/patterns", s.GetPatterns).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/ws/{roomId}", game.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	roomID := game.GetJoinableRoom()

	var resp internal.Response
	if roomID != "" {
		resp = internal.Response{
			StatusCode:    http.StatusOK,
			RespStartTime: startTime,
			Data:          roomID,
		}
	} else {
		resp = internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "No joinable rooms available",
		}
	}

	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetCard returns the deterministic grid for a card id. Clients holding
// an id can also regenerate the grid locally; this endpoint exists for
// thin clients that cannot.
func (s *Server) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.Atoi(mux.Vars(r)["cardId"])
	if err != nil {
		http.Error(w, "card id must be an integer", http.StatusBadRequest)
		return
	}

	card, err := bingo.GenerateCard(cardID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(card)
}

func (s *Server) GetPatterns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"patterns": bingo.PatternNames()})
}
