package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bingo_active_rooms",
		Help: "Rooms currently held in the registry.",
	})
	metricConnectedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bingo_connected_players",
		Help: "Players currently attached over websocket.",
	})
	metricEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bingo_events_processed_total",
		Help: "Scheduled events applied, by kind.",
	}, []string{"kind"})
	metricStaleEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bingo_stale_events_total",
		Help: "Scheduled events dropped because their precondition no longer held.",
	})
	metricNumbersCalled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bingo_numbers_called_total",
		Help: "Numbers drawn across all rooms.",
	})
	metricClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bingo_claims_total",
		Help: "Bingo claims adjudicated, by result.",
	}, []string{"result"})
)
