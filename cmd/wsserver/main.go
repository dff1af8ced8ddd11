// Command wsserver hosts the crowd-simulation kernel behind a WebSocket
// endpoint: it ticks the kernel on a fixed-rate timer and streams frame
// snapshots (keyframes plus incremental deltas) to connected viewers.
// Rendering, alarms, and file export live in the viewer, not here.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"crowdsim/internal/kernel"
	"crowdsim/internal/layout"
	"crowdsim/internal/logging"
	"crowdsim/internal/logging/sinks"
	"crowdsim/internal/simconfig"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	layoutPath := flag.String("layout", "", "venue layout JSON file (default: built-in demo layout)")
	seed := flag.String("seed", "wsserver", "deterministic run seed")
	n := flag.Int("n", 150, "participant count")
	flag.Parse()

	venue := simconfig.DefaultVenueLayout()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatalf("read layout: %v", err)
		}
		doc, err := layout.Unmarshal(data)
		if err != nil {
			log.Fatalf("parse layout: %v", err)
		}
		venue = doc.ToVenueLayout()
	}

	cfg := simconfig.DefaultConfig()
	cfg.Seed = *seed
	cfg.N = *n

	router := logging.NewRouter(logging.DefaultConfig(), []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsole(os.Stdout)},
	})

	k := kernel.New(cfg, venue, router)
	k.Start()
	hub := newHub(k)

	stop := make(chan struct{})
	go hub.RunSimulation(stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		sub := hub.Subscribe(conn)
		go readCommands(hub, sub)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Metrics   kernel.Metrics   `json:"metrics"`
			Telemetry kernel.Telemetry `json:"telemetry"`
		}{k.GetMetrics(), k.GetTelemetry()})
	})
	mux.HandleFunc("/layout-schema", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(layout.Schema())
	})

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		log.Printf("wsserver listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	close(stop)
	server.Close()
}

// readCommands pumps inbound control messages from one viewer until its
// connection drops.
func readCommands(hub *Hub, sub *subscriber) {
	defer hub.Disconnect(sub.id)
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("subscriber %d sent malformed command: %v", sub.id, err)
			continue
		}
		hub.HandleCommand(sub, cmd)
	}
}
