package main

import "crowdsim/internal/kernel"

// keyframeMessage carries a complete frame snapshot. Sent on subscribe, on
// client request, and every keyframeInterval ticks.
type keyframeMessage struct {
	Type       string               `json:"type"`
	Frame      kernel.FrameSnapshot `json:"frame"`
	ServerTime int64                `json:"serverTime"`
}

// deltaMessage carries only what changed since the previous broadcast:
// moved or state-changed agents, ids that exited, and the scalar flags a
// viewer needs every frame. Grids ride only on keyframes.
type deltaMessage struct {
	Type             string                   `json:"type"`
	Tick             uint64                   `json:"tick"`
	SimTime          float64                  `json:"simTime"`
	Evacuating       bool                     `json:"evacuating"`
	Agents           []kernel.AgentView       `json:"agents,omitempty"`
	Removed          []int                    `json:"removed,omitempty"`
	Firefighters     []kernel.FirefighterView `json:"firefighters,omitempty"`
	BurningCellCount int                      `json:"burningCellCount"`
	ServerTime       int64                    `json:"serverTime"`
}

// clientCommand is the inbound control message a viewer may send.
type clientCommand struct {
	Type string   `json:"type"`
	X    float64  `json:"x,omitempty"`
	Y    float64  `json:"y,omitempty"`
	IDs  []string `json:"ids,omitempty"`
}
