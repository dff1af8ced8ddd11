package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"crowdsim/internal/logging"
)

// JSONFile emits newline-delimited structured events, for offline analysis
// of a run's event stream.
type JSONFile struct {
	mu      sync.Mutex
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONFile constructs a JSONFile sink writing to w.
func NewJSONFile(w io.Writer) *JSONFile {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	return &JSONFile{writer: buf, encoder: json.NewEncoder(buf)}
}

func (s *JSONFile) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(event); err != nil {
		return err
	}
	return s.writer.Flush()
}

func (s *JSONFile) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}
