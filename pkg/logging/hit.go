package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HitLevel is the level findings are reported at.
// Implemented as WarnLevel but transformed to "hit" in output.
const HitLevel zerolog.Level = zerolog.WarnLevel

// HitLevelWriter wraps an io.Writer and rewrites the level of entries marked
// as hits to "hit".
type HitLevelWriter struct {
	out       io.Writer
	mu        sync.Mutex
	nextIsHit bool
}

// NewHitLevelWriter creates a new HitLevelWriter wrapping out.
func NewHitLevelWriter(out io.Writer) *HitLevelWriter {
	return &HitLevelWriter{out: out}
}

func (w *HitLevelWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	isHit := w.nextIsHit
	w.nextIsHit = false
	out := w.out
	w.mu.Unlock()

	if isHit && len(p) > 0 {
		var entry map[string]interface{}
		if err := json.Unmarshal(p, &entry); err == nil {
			if entry["level"] == "warn" || entry["level"] == "error" {
				entry["level"] = "hit"
			}
			delete(entry, "_hit")

			if b, err := json.Marshal(entry); err == nil {
				b = append(b, '\n')
				if _, err := out.Write(b); err != nil {
					return 0, err
				}
				return len(p), nil
			}
		}
	}

	return out.Write(p)
}

// SetOutput replaces the wrapped writer.
func (w *HitLevelWriter) SetOutput(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

func (w *HitLevelWriter) markNextAsHit() {
	w.mu.Lock()
	w.nextIsHit = true
	w.mu.Unlock()
}

// HitEvent wraps a zerolog.Event for hit-level logging.
type HitEvent struct {
	event  *zerolog.Event
	writer *HitLevelWriter
}

func (h *HitEvent) Str(key, val string) *HitEvent {
	h.event.Str(key, val)
	return h
}

func (h *HitEvent) Int(key string, val int) *HitEvent {
	h.event.Int(key, val)
	return h
}

func (h *HitEvent) Bool(key string, val bool) *HitEvent {
	h.event.Bool(key, val)
	return h
}

func (h *HitEvent) Msg(msg string) {
	if h.writer != nil {
		h.writer.markNextAsHit()
	}
	h.event.Bool("_hit", true).Msg(msg)
}

var (
	globalHitWriter   *HitLevelWriter
	globalHitWriterMu sync.Mutex
)

// SetGlobalHitWriter sets the writer used by Hit.
func SetGlobalHitWriter(writer *HitLevelWriter) {
	globalHitWriterMu.Lock()
	globalHitWriter = writer
	globalHitWriterMu.Unlock()
}

// Hit creates a hit-level log event for a finding.
// Example: logging.Hit().Str("rule", "CKV_SEC_1").Msg("HIT")
func Hit() *HitEvent {
	globalHitWriterMu.Lock()
	if globalHitWriter == nil {
		globalHitWriter = NewHitLevelWriter(os.Stderr)
		log.Logger = zerolog.New(globalHitWriter).With().Timestamp().Logger()
	}
	w := globalHitWriter
	globalHitWriterMu.Unlock()

	return &HitEvent{
		event:  log.WithLevel(zerolog.ErrorLevel),
		writer: w,
	}
}
