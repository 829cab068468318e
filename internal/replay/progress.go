package replay

// Status captures progress state of one trace file.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one trace file.
type Event struct {
	File   string
	Status Status
	Done   int // packets walked so far
	Total  int
	Stats  Stats
	Err    error
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// progressEvery is how many packets pass between progress events inside a batch.
const progressEvery = 256
