package main

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"crowdsim/internal/kernel"
)

const (
	tickRate  = 20
	writeWait = 5 * time.Second

	// keyframeInterval is how many broadcasts separate full snapshots;
	// ticks in between carry only deltas.
	keyframeInterval = 20
)

// Hub owns the kernel and every subscribed viewer connection.
type Hub struct {
	mu          sync.Mutex
	kernel      *kernel.Kernel
	subscribers map[uint64]*subscriber
	nextSub     atomic.Uint64

	lastAgents              map[int]kernel.AgentView
	broadcastsSinceKeyframe int
}

type subscriber struct {
	id   uint64
	conn *websocket.Conn

	// mu guards both the connection writes and needKeyframe; the
	// command reader and the broadcast loop touch them from different
	// goroutines.
	mu           sync.Mutex
	needKeyframe bool
}

func newHub(k *kernel.Kernel) *Hub {
	return &Hub{
		kernel:      k,
		subscribers: make(map[uint64]*subscriber),
		lastAgents:  make(map[int]kernel.AgentView),
	}
}

// Subscribe registers a viewer connection. Every new subscriber starts
// with a keyframe so it never has to apply a delta against nothing.
func (h *Hub) Subscribe(conn *websocket.Conn) *subscriber {
	sub := &subscriber{id: h.nextSub.Add(1), conn: conn, needKeyframe: true}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Disconnect removes a subscriber and closes its connection.
func (h *Hub) Disconnect(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// HandleCommand applies one inbound viewer command to the kernel.
func (h *Hub) HandleCommand(sub *subscriber, cmd clientCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch cmd.Type {
	case "start_fire":
		h.kernel.StartFire(cmd.X, cmd.Y)
	case "evacuate":
		h.kernel.TriggerEvacuation()
	case "block_exits":
		h.kernel.SetBlockedExits(cmd.IDs)
	case "pause":
		h.kernel.Pause()
	case "start":
		h.kernel.Start()
	case "reset":
		h.kernel.Reset()
		h.lastAgents = make(map[int]kernel.AgentView)
	case "resync":
		sub.mu.Lock()
		sub.needKeyframe = true
		sub.mu.Unlock()
	default:
		log.Printf("ignoring unknown command %q from subscriber %d", cmd.Type, sub.id)
	}
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes, broadcasting after every tick.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now

			h.mu.Lock()
			h.kernel.Tick(dt)
			frame := h.kernel.GetFrame()
			keyframe, delta := h.prepareLocked(frame)
			subs := make([]*subscriber, 0, len(h.subscribers))
			for _, sub := range h.subscribers {
				subs = append(subs, sub)
			}
			h.mu.Unlock()

			h.broadcast(subs, keyframe, delta)
		}
	}
}

// prepareLocked marshals this tick's keyframe and delta payloads and rolls
// the per-agent cache the deltas diff against.
func (h *Hub) prepareLocked(frame kernel.FrameSnapshot) (keyframe, delta []byte) {
	serverTime := time.Now().UnixMilli()

	changed := make([]kernel.AgentView, 0)
	current := make(map[int]kernel.AgentView, len(frame.Agents))
	for _, a := range frame.Agents {
		current[a.ID] = a
		if prev, ok := h.lastAgents[a.ID]; !ok || prev != a {
			changed = append(changed, a)
		}
	}
	removed := make([]int, 0)
	for id := range h.lastAgents {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	h.lastAgents = current

	h.broadcastsSinceKeyframe++
	wantKeyframe := h.broadcastsSinceKeyframe >= keyframeInterval
	if wantKeyframe {
		h.broadcastsSinceKeyframe = 0
	}

	keyframe, err := json.Marshal(keyframeMessage{Type: "keyframe", Frame: frame, ServerTime: serverTime})
	if err != nil {
		log.Printf("failed to marshal keyframe: %v", err)
		keyframe = nil
	}
	if wantKeyframe {
		return keyframe, nil
	}

	delta, err = json.Marshal(deltaMessage{
		Type:             "delta",
		Tick:             frame.Tick,
		SimTime:          frame.SimTime,
		Evacuating:       frame.Evacuating,
		Agents:           changed,
		Removed:          removed,
		Firefighters:     frame.Firefighters,
		BurningCellCount: frame.BurningCellCount,
		ServerTime:       serverTime,
	})
	if err != nil {
		log.Printf("failed to marshal delta: %v", err)
		delta = nil
	}
	return keyframe, delta
}

// broadcast sends each subscriber its due payload: a keyframe when one is
// scheduled or the subscriber asked for one, a delta otherwise.
func (h *Hub) broadcast(subs []*subscriber, keyframe, delta []byte) {
	for _, sub := range subs {
		sub.mu.Lock()
		payload := delta
		if delta == nil || sub.needKeyframe {
			payload = keyframe
			sub.needKeyframe = false
		}
		if payload == nil {
			sub.mu.Unlock()
			continue
		}
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, payload)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to subscriber %d: %v", sub.id, err)
			h.Disconnect(sub.id)
		}
	}
}
