package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbl_rooms_created_total",
		Help: "Rooms created since process start.",
	})

	roundsWon = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbl_rounds_won_total",
		Help: "Rounds awarded to a player.",
	})

	gamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbl_games_finished_total",
		Help: "Games that reached the finished status.",
	})

	wsSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rbl_ws_subscribers",
		Help: "Currently connected websocket subscribers.",
	})
)
