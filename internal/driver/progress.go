package driver

import "time"

// Stage describes a high-level run phase.
type Stage string

const (
	// StageDecode reads and parses input documents.
	StageDecode Stage = "decode"
	// StageRefine folds a document into the output tree.
	StageRefine Stage = "refine"
	// StageWrite persists the main document.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is finished.
	StatusDone Status = "done"
	// StatusError indicates the file failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines during decoding.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent sends evt, blocking until the receiver takes it.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

// OnEvent calls fn.
func (fn SinkFunc) OnEvent(evt Event) { fn(evt) }

func notify(s ProgressSink, evt Event) {
	if s != nil {
		s.OnEvent(evt)
	}
}
