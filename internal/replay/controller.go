package replay

import (
	"context"
	"errors"
	"fmt"

	"tracereplay/internal/diag"
	"tracereplay/internal/interpret"
	"tracereplay/internal/packet"
	"tracereplay/internal/trace"
)

// Controller is the host-facing replay surface. It holds one Session and
// interprets packets with the call table of each packet's own API family.
type Controller struct {
	session  *Session
	reporter diag.Reporter
	file     *packet.FileInfo
	loaded   bool
}

// NewController creates a controller whose session is built from opts.
func NewController(opts Options) *Controller {
	return &Controller{
		session:  NewSession(opts),
		reporter: opts.Reporter,
	}
}

// Session exposes the underlying session.
func (c *Controller) Session() *Session { return c.session }

// Stats returns the counters of the current load.
func (c *Controller) Stats() Stats { return c.session.Stats() }

// Loaded reports whether a trace file is loaded with at least one backend.
func (c *Controller) Loaded() bool { return c.loaded }

// LoadTraceFile loads backends for info's tracer list and reports problems
// to r. It returns false when no backend ended up active.
func (c *Controller) LoadTraceFile(ctx context.Context, info *packet.FileInfo, r diag.Reporter) bool {
	c.UnloadTraceFile(ctx)
	if r != nil {
		c.reporter = r
	}
	if c.reporter == nil {
		c.reporter = diag.NopReporter{}
	}
	if info == nil {
		diag.ReportError(c.reporter, diag.IOLoadFileError, diag.Location{}, "no trace file given").Emit()
		return false
	}
	c.session.SetReporter(c.reporter)
	c.session.SetFile(info.Path)
	c.emit(info, StatusLoading, nil)

	ctx, span := c.begin(ctx, "load", info)
	err := c.session.LoadBackends(ctx, info.Header)
	if err == nil && len(c.session.Active()) == 0 {
		err = ErrMissingBackends
	}
	if err != nil {
		c.session.UnloadBackends(ctx)
		span.End(loadDetail(err))
		c.emit(info, StatusError, err)
		return false
	}
	span.End("ok")

	c.file = info
	c.loaded = true
	return true
}

func loadDetail(err error) string {
	switch {
	case errors.Is(err, ErrNoAPI):
		return "no_api"
	case errors.Is(err, ErrInitialize):
		return "init_failed"
	case errors.Is(err, ErrMissingBackends):
		return "no_backends"
	default:
		return "error"
	}
}

// PlayTraceFile walks every packet of info once. It returns false only when
// ctx is cancelled before the walk completes; per-packet problems are
// reported and counted in Stats.
func (c *Controller) PlayTraceFile(ctx context.Context, info *packet.FileInfo) bool {
	if info == nil {
		info = c.file
	}
	if info == nil {
		return true
	}
	if !c.loaded {
		c.session.SetFile(info.Path)
	}
	c.emit(info, StatusPlaying, nil)

	ctx, span := c.begin(ctx, "play_file", info)
	_, err := c.session.PlayBatches(ctx, Batches(info.Packets))
	if err != nil {
		diag.ReportWarning(c.reporter, diag.PlayCancelled, diag.InFile(info.Path),
			fmt.Sprintf("replay cancelled after %d of %d packets", c.session.Stats().Packets, len(info.Packets))).
			WithNote(err.Error()).
			Emit()
		span.End("cancelled")
		c.emit(info, StatusError, err)
		return false
	}
	span.End("")
	c.emit(info, StatusDone, nil)
	return true
}

// UnloadTraceFile tears down every active backend. Safe to call repeatedly.
func (c *Controller) UnloadTraceFile(ctx context.Context) {
	ctx, span := c.begin(ctx, "unload", c.file)
	c.session.UnloadBackends(ctx)
	span.End("")
	c.loaded = false
	c.file = nil
}

// InterpretPacket decodes h with the call table of h's API family. Unknown
// families and packet ids return nil and a warning.
func (c *Controller) InterpretPacket(h *packet.Header) *interpret.Packet {
	if h == nil {
		return nil
	}
	file := ""
	if c.file != nil {
		file = c.file.Path
	}
	in, ok := interpret.ForTracer(h.TracerID)
	if !ok {
		diag.ReportWarning(c.reporter, diag.InterpUnknownPacket, diag.At(file, h),
			fmt.Sprintf("no interpreter for tracer_id %d", h.TracerID)).Emit()
		return nil
	}
	p, ok := in.Interpret(h)
	if !ok {
		diag.ReportWarning(c.reporter, diag.InterpUnknownPacket, diag.At(file, h),
			fmt.Sprintf("unrecognized %s packet_id: %d", in.Family(), h.PacketID)).Emit()
		return nil
	}
	if p.ArgsErr != nil {
		diag.ReportWarning(c.reporter, diag.InterpBadArguments, diag.At(file, h),
			fmt.Sprintf("malformed arguments for %s", p.Name)).
			WithNote(p.ArgsErr.Error()).
			Emit()
	}
	return p
}

func (c *Controller) begin(ctx context.Context, name string, info *packet.FileInfo) (context.Context, *trace.Span) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSession, name, trace.CurrentSpan(ctx))
	if info != nil {
		span.WithExtra("file", info.Path)
	}
	return trace.WithSpan(ctx, span), span
}

func (c *Controller) emit(info *packet.FileInfo, status Status, err error) {
	if c.session.progress == nil || info == nil {
		return
	}
	c.session.progress.OnEvent(Event{
		File:   info.Path,
		Status: status,
		Done:   c.session.stats.Packets,
		Total:  len(info.Packets),
		Stats:  c.session.stats,
		Err:    err,
	})
}
