package grpc

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/nodeplugin/pkg/plugin"
	"github.com/example/nodeplugin/proto"
)

// frameWriter is the single sender of one Run stream. Frames leave in the
// order they are written, stamped with the run id and a timestamp that never
// goes backwards. Nothing can be written after the result frame.
type frameWriter struct {
	mu      sync.Mutex
	stream  proto.NodePluginService_RunServer
	runID   string
	now     func() time.Time
	metrics *Metrics

	lastMs     int64
	done       bool
	logs       int
	progresses int
}

var _ plugin.EventSink = (*frameWriter)(nil)

func newFrameWriter(stream proto.NodePluginService_RunServer, runID string, now func() time.Time, metrics *Metrics) *frameWriter {
	return &frameWriter{stream: stream, runID: runID, now: now, metrics: metrics}
}

func (w *frameWriter) Log(level proto.LogLevel, message string) error {
	if level == proto.LogLevel_LOG_LEVEL_UNSPECIFIED || !level.IsValid() {
		level = proto.LogLevel_LOG_LEVEL_INFO
	}
	return w.send(&proto.RunResponse{
		Type:    proto.ResponseType_RESPONSE_TYPE_LOG,
		Payload: &proto.RunResponse_Log{Log: &proto.LogPayload{Level: level, Message: message}},
	})
}

func (w *frameWriter) Progress(current, total int32, message string) error {
	return w.send(&proto.RunResponse{
		Type: proto.ResponseType_RESPONSE_TYPE_PROGRESS,
		Payload: &proto.RunResponse_Progress{Progress: &proto.ProgressPayload{
			Current:    current,
			Total:      total,
			Percentage: plugin.Percentage(current, total),
			Message:    message,
		}},
	})
}

func (w *frameWriter) counts() (logs, progresses int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.logs, w.progresses
}

// finish writes the terminal frame.
func (w *frameWriter) finish(result *proto.ResultPayload) error {
	return w.send(&proto.RunResponse{
		Type:    proto.ResponseType_RESPONSE_TYPE_RESULT,
		Payload: &proto.RunResponse_Result{Result: result},
	})
}

func (w *frameWriter) send(frame *proto.RunResponse) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done {
		return fmt.Errorf("%w: %s frame after the result of run %s", plugin.ErrProtocolViolation, frame.Type, w.runID)
	}

	ts := w.now().UnixMilli()
	if ts < w.lastMs {
		ts = w.lastMs
	}
	w.lastMs = ts
	frame.TimestampMs = ts
	frame.RunId = w.runID

	switch frame.Type {
	case proto.ResponseType_RESPONSE_TYPE_LOG:
		w.logs++
	case proto.ResponseType_RESPONSE_TYPE_PROGRESS:
		w.progresses++
	case proto.ResponseType_RESPONSE_TYPE_RESULT:
		w.done = true
	}

	if err := w.stream.Send(frame); err != nil {
		return fmt.Errorf("failed to send %s frame: %w", frame.Type, err)
	}
	w.metrics.frameSent(frame.Type)
	return nil
}
