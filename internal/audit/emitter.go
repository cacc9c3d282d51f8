package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// #region emitter

// Emitter writes validated audit events to a line-oriented sink, one JSON
// object per line. Events are write-only; nothing here reads them back.
type Emitter struct {
	mu   sync.Mutex
	sink io.Writer
	now  func() time.Time
}

// NewEmitter creates an emitter over the given sink.
func NewEmitter(sink io.Writer) *Emitter {
	return &Emitter{sink: sink, now: time.Now}
}

// #endregion emitter

// #region emit

// Emit validates the event, stamps a timestamp if absent, and writes one
// line to the sink. Invalid events are rejected synchronously; nothing is
// written for them.
func (e *Emitter) Emit(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	ev.Record = RecordTag
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.sink.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// #endregion emit

// #region emit-batch

// EmitBatch validates every event before writing any. The first invalid
// event aborts the whole batch; there are no partial commits.
func (e *Emitter) EmitBatch(events []Event) error {
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("batch event %d: %w", i, err)
		}
	}
	for _, ev := range events {
		if err := e.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// #endregion emit-batch
