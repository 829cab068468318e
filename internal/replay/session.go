package replay

import (
	"context"
	"fmt"
	"strconv"

	"tracereplay/internal/diag"
	"tracereplay/internal/packet"
	"tracereplay/internal/replayer"
	"tracereplay/internal/trace"
)

// Options configures a Session.
type Options struct {
	Registry   *replayer.Registry // nil means replayer.DefaultRegistry()
	Factory    *replayer.Factory
	Reporter   diag.Reporter // nil drops diagnostics
	Surface    packet.Surface
	DebugLevel int
	Progress   ProgressSink
}

// Session owns the backend table for one trace file.
type Session struct {
	registry   *replayer.Registry
	factory    *replayer.Factory
	reporter   diag.Reporter
	surface    packet.Surface
	debugLevel int
	progress   ProgressSink

	file     string
	backends [packet.MaxTracerID]replayer.Backend
	stats    Stats
}

// NewSession creates a session with an empty backend table.
func NewSession(opts Options) *Session {
	reg := opts.Registry
	if reg == nil {
		reg = replayer.DefaultRegistry()
	}
	factory := opts.Factory
	if factory == nil {
		factory = replayer.NewFactory()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Session{
		registry:   reg,
		factory:    factory,
		reporter:   reporter,
		surface:    opts.Surface.OrDefault(),
		debugLevel: opts.DebugLevel,
		progress:   opts.Progress,
	}
}

// SetReporter replaces the diagnostic observer.
func (s *Session) SetReporter(r diag.Reporter) {
	if r == nil {
		r = diag.NopReporter{}
	}
	s.reporter = r
}

// SetFile sets the file name used in diagnostic locations.
func (s *Session) SetFile(path string) { s.file = path }

// Stats returns the counters accumulated since the last LoadBackends.
func (s *Session) Stats() Stats { return s.stats }

// Backend returns the active backend for id, or nil.
func (s *Session) Backend(id packet.TracerID) replayer.Backend {
	if id >= packet.MaxTracerID {
		return nil
	}
	return s.backends[id]
}

// Active returns the ids that have an active backend, in ascending order.
func (s *Session) Active() []packet.TracerID {
	var ids []packet.TracerID
	for id, b := range s.backends {
		if b != nil {
			ids = append(ids, packet.TracerID(id))
		}
	}
	return ids
}

// LoadBackends tears down any previous table and then creates and
// initializes a backend for every listed tracer that needs a replayer.
//
// A tracer whose backend cannot be created is reported and skipped. An
// initialization failure tears down everything created so far and returns
// ErrInitialize. A header without any tracer that needs a replayer returns
// ErrNoAPI. A registry entry that does not describe its own id panics.
func (s *Session) LoadBackends(ctx context.Context, header packet.FileHeader) error {
	s.UnloadBackends(ctx)
	s.stats = Stats{}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "load_backends", trace.CurrentSpan(ctx))
	span.WithExtra("tracers", strconv.Itoa(header.TracerCount()))

	loc := diag.InFile(s.file)
	sawAPI := false
	for _, id := range header.TracerIDs {
		if id >= packet.MaxTracerID {
			s.warn(diag.LoadConsistency, loc, fmt.Sprintf("tracer id %d is outside the tracer table (max %d)", id, packet.MaxTracerID-1))
			continue
		}
		info := s.registry.Lookup(id)
		if !info.NeedsReplayer {
			continue
		}
		sawAPI = true
		if s.backends[id] != nil {
			continue
		}

		bspan := trace.Begin(tracer, trace.ScopeBackend, "create_backend", span.ID())
		bspan.WithExtra("tracer", info.Name)
		b, err := s.factory.Create(id)
		if err != nil {
			diag.ReportError(s.reporter, diag.LoadNoImplementation, loc,
				fmt.Sprintf("couldn't create replayer for tracer id %d (%s)", id, info.Name)).
				WithNote(err.Error()).
				Emit()
			s.stats.Errors++
			bspan.End("missing")
			continue
		}

		if code := b.Initialize(s.surface, s.debugLevel); code != replayer.ErrorNone {
			diag.ReportError(s.reporter, diag.LoadInitializeFailed, loc,
				fmt.Sprintf("couldn't initialize replayer for tracer id %d (%s)", id, info.Name)).
				WithNote(fmt.Sprintf("initialize returned error code %d", code)).
				Emit()
			s.stats.Errors++
			if err := s.factory.Destroy(&b); err != nil {
				s.unloadFailed(loc, id, err)
			}
			bspan.End("init_failed")
			s.UnloadBackends(ctx)
			span.End("init_failed")
			return fmt.Errorf("tracer %d (%s): %w", id, info.Name, ErrInitialize)
		}
		s.backends[id] = b
		bspan.End("ok")
	}

	if !sawAPI {
		diag.ReportError(s.reporter, diag.LoadNoAPI, loc, "no API specified in trace file for replaying").Emit()
		s.stats.Errors++
		span.End("no_api")
		return ErrNoAPI
	}
	span.WithExtra("active", strconv.Itoa(len(s.Active())))
	span.End("ok")
	return nil
}

// UnloadBackends deinitializes and destroys every active backend. Calling it
// on an empty table is a no-op.
func (s *Session) UnloadBackends(ctx context.Context) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	for id := range s.backends {
		if s.backends[id] == nil {
			continue
		}
		span := trace.Begin(tracer, trace.ScopeBackend, "unload_backend", parent)
		span.WithExtra("tracer", packet.TracerID(id).String())
		s.backends[id].Deinitialize()
		if err := s.factory.Destroy(&s.backends[id]); err != nil {
			s.unloadFailed(diag.InFile(s.file), packet.TracerID(id), err)
			span.End("close_failed")
			continue
		}
		span.End("")
	}
}

func (s *Session) unloadFailed(loc diag.Location, id packet.TracerID, err error) {
	s.fail(diag.PlayUnloadFailed, loc,
		fmt.Sprintf("couldn't release replayer for tracer id %d (%s)", id, id)).
		WithNote(err.Error()).
		Emit()
}

func (s *Session) warn(code diag.Code, loc diag.Location, msg string) {
	diag.ReportWarning(s.reporter, code, loc, msg).Emit()
	s.stats.Warnings++
}

func (s *Session) fail(code diag.Code, loc diag.Location, msg string) *diag.ReportBuilder {
	s.stats.Errors++
	return diag.ReportError(s.reporter, code, loc, msg)
}
