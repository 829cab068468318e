// Package runner replays a set of trace files, each in its own replay
// session, optionally in parallel.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tracereplay/internal/diag"
	"tracereplay/internal/history"
	"tracereplay/internal/observ"
	"tracereplay/internal/packet"
	"tracereplay/internal/replay"
	"tracereplay/internal/trace"
	"tracereplay/internal/tracefile"
)

// Request describes one replay run.
type Request struct {
	Files          []string
	Jobs           int // 0 means GOMAXPROCS
	Surface        packet.Surface
	DebugLevel     int
	CallLogDir     string
	MaxDiagnostics int
	Progress       replay.ProgressSink
	Timer          *observ.Timer
	History        *history.Store
}

// FileResult is the outcome of replaying one file.
type FileResult struct {
	Path     string
	Tracers  []packet.TracerID
	Bag      *diag.Bag
	Stats    replay.Stats
	Loaded   bool
	Played   bool
	Outcome  string
	Duration time.Duration
}

// Failed reports whether the file did not replay cleanly.
func (r FileResult) Failed() bool {
	return r.Outcome != history.OutcomeOK
}

// Run replays every file of req. Results are returned in req.Files order.
// A panic inside a session (a broken tracer registry) is re-raised on the
// calling goroutine after the other jobs stop.
func Run(ctx context.Context, req Request) ([]FileResult, error) {
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(req.Files))
	if len(req.Files) == 0 {
		return results, nil
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeSession, "replay_run", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	panics := make([]any, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		if req.Progress != nil {
			req.Progress.OnEvent(replay.Event{File: path, Status: replay.StatusQueued})
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panics[i] = r
				}
			}()
			results[i] = replayFile(gctx, req, path)
			return nil
		})
	}
	err := g.Wait()
	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}
	if err != nil {
		return results, err
	}

	if req.History != nil {
		// a cancelled run is still recorded with its cancelled outcome
		hctx := context.WithoutCancel(ctx)
		for _, res := range results {
			if _, err := req.History.Record(hctx, historyRun(res)); err != nil {
				return results, fmt.Errorf("record history: %w", err)
			}
		}
	}
	return results, nil
}

func replayFile(ctx context.Context, req Request, path string) FileResult {
	start := time.Now()
	bag := diag.NewBag(req.MaxDiagnostics)
	reporter := diag.MultiReporter{diag.BagReporter{Bag: bag}, traceReporter(ctx)}
	res := FileResult{Path: path, Bag: bag}

	endRead := req.Timer.Track("read", path)
	info, err := tracefile.ReadFile(path)
	if err != nil {
		endRead("failed")
		diag.ReportError(reporter, diag.IOLoadFileError, diag.InFile(path), "failed to load trace file").
			WithNote(err.Error()).
			Emit()
		res.Outcome = history.OutcomeLoadError
		emit(req.Progress, replay.Event{File: path, Status: replay.StatusError, Err: err})
		return finish(res, start)
	}
	endRead(fmt.Sprintf("%d packets", info.PacketCount()))
	res.Tracers = info.Header.TracerIDs

	ctrl := replay.NewController(replay.Options{
		Factory:    NewFactory(path, req.CallLogDir),
		Reporter:   reporter,
		Surface:    req.Surface,
		DebugLevel: req.DebugLevel,
		Progress:   req.Progress,
	})

	endLoad := req.Timer.Track("load", path)
	res.Loaded = ctrl.LoadTraceFile(ctx, info, reporter)
	if !res.Loaded {
		endLoad("failed")
		res.Stats = ctrl.Stats()
		res.Outcome = history.OutcomeLoadError
		return finish(res, start)
	}
	endLoad(fmt.Sprintf("%d backends", len(ctrl.Session().Active())))

	endPlay := req.Timer.Track("play", path)
	res.Played = ctrl.PlayTraceFile(ctx, info)
	res.Stats = ctrl.Stats()
	endPlay(fmt.Sprintf("%d replayed, %d failed, %d skipped", res.Stats.Replayed, res.Stats.Failed, res.Stats.Skipped))

	endUnload := req.Timer.Track("unload", path)
	ctrl.UnloadTraceFile(ctx)
	endUnload("")

	switch {
	case !res.Played:
		res.Outcome = history.OutcomeCancelled
	case res.Stats.Clean() && !bag.HasErrors():
		res.Outcome = history.OutcomeOK
	default:
		res.Outcome = history.OutcomeDegraded
	}
	return finish(res, start)
}

// traceReporter mirrors diagnostics into the trace as points under the
// current span.
func traceReporter(ctx context.Context) diag.Reporter {
	tracer := trace.FromContext(ctx)
	if !tracer.Enabled() {
		return nil
	}
	parent := trace.CurrentSpan(ctx)
	return diag.ReporterFunc(func(d *diag.Diagnostic) {
		trace.Point(tracer, trace.ScopeBackend, "diagnostic", d.Code.ID(), parent, map[string]string{
			"severity": d.Severity.String(),
			"at":       d.Location.String(),
		})
	})
}

func finish(res FileResult, start time.Time) FileResult {
	res.Duration = time.Since(start)
	res.Bag.Sort()
	return res
}

func emit(sink replay.ProgressSink, evt replay.Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func historyRun(res FileResult) history.Run {
	names := make([]string, len(res.Tracers))
	for i, id := range res.Tracers {
		names[i] = id.String()
	}
	return history.Run{
		TracePath: res.Path,
		Tracers:   strings.Join(names, ","),
		Packets:   res.Stats.Packets,
		Replayed:  res.Stats.Replayed,
		Failed:    res.Stats.Failed,
		Skipped:   res.Stats.Skipped,
		Warnings:  res.Bag.Count(diag.SevWarning),
		Errors:    res.Bag.Count(diag.SevError),
		Outcome:   res.Outcome,
		Duration:  res.Duration,
	}
}
