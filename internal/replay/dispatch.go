package replay

import (
	"context"
	"fmt"
	"strconv"

	"tracereplay/internal/diag"
	"tracereplay/internal/packet"
	"tracereplay/internal/trace"
)

// PlayBatches walks the batches in order and routes every API call to the
// backend of its tracer. Problems with single packets are reported and the
// walk moves on; ctx is checked between batches only. It returns ctx.Err()
// when the walk was cut short.
func (s *Session) PlayBatches(ctx context.Context, batches [][]*packet.Header) (Stats, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "play", trace.CurrentSpan(ctx))

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	span.WithExtra("packets", strconv.Itoa(total))
	span.WithExtra("batches", strconv.Itoa(len(batches)))

	before := s.stats
	done := 0
	var err error
	for _, batch := range batches {
		if err = ctx.Err(); err != nil {
			break
		}
		s.walk(tracer, span.ID(), batch, done, total)
		done += len(batch)
	}

	delta := s.stats
	delta.sub(before)
	if err != nil {
		span.End("cancelled")
		return delta, err
	}
	span.End("")
	return delta, nil
}

func (s *Session) walk(tracer trace.Tracer, parent uint64, packets []*packet.Header, done, total int) {
	for i, h := range packets {
		if h == nil {
			continue
		}
		s.dispatch(tracer, parent, h)
		if s.progress != nil && (i+1)%progressEvery == 0 {
			s.emitProgress(done+i+1, total)
		}
	}
	if s.progress != nil {
		s.emitProgress(done+len(packets), total)
	}
}

func (s *Session) emitProgress(done, total int) {
	s.progress.OnEvent(Event{
		File:   s.file,
		Status: StatusPlaying,
		Done:   done,
		Total:  total,
		Stats:  s.stats,
	})
}

// dispatch handles one packet.
func (s *Session) dispatch(tracer trace.Tracer, parent uint64, h *packet.Header) {
	s.stats.Packets++
	loc := diag.At(s.file, h)

	if h.PacketID.IsControl() {
		s.stats.Controls++
		s.control(tracer, parent, h, loc)
		return
	}

	if !h.TracerID.Valid() {
		s.stats.Skipped++
		s.warn(diag.PlayInvalidTracer, loc,
			fmt.Sprintf("tracer_id %d is invalid (reserved or out of range) for packet %d", h.TracerID, h.GlobalPacketIndex))
		return
	}

	b := s.backends[h.TracerID]
	if b == nil {
		s.stats.Skipped++
		s.warn(diag.PlayNoBackend, loc,
			fmt.Sprintf("tracer_id %d (%s) has no active replayer; skipping packet %d", h.TracerID, h.TracerID, h.GlobalPacketIndex))
		return
	}

	if !h.PacketID.IsAPICall() {
		s.stats.Skipped++
		s.fail(diag.PlayMalformed, loc,
			fmt.Sprintf("bad packet type id=%d, index=%d", h.PacketID, h.GlobalPacketIndex)).Emit()
		return
	}

	if tracer.Level().ShouldEmit(trace.ScopePacket) {
		trace.Point(tracer, trace.ScopePacket, "replay_packet", "", parent, map[string]string{
			"index":  strconv.FormatUint(h.GlobalPacketIndex, 10),
			"id":     strconv.FormatUint(uint64(h.PacketID), 10),
			"tracer": h.TracerID.String(),
		})
	}

	if res := b.Replay(h); !res.OK() {
		s.stats.Failed++
		s.fail(diag.PlayReplayFailed, loc, fmt.Sprintf("failed to replay packet_id %d", h.PacketID)).
			WithNote("replayer result: " + res.String()).
			Emit()
		return
	}
	s.stats.Replayed++
}

// control handles message and marker packets. Markers carry no work for the
// walk beyond being counted.
func (s *Session) control(tracer trace.Tracer, parent uint64, h *packet.Header, loc diag.Location) {
	switch h.PacketID {
	case packet.PacketMessage:
		s.stats.Messages++
		msg, err := packet.DecodeMessage(h)
		if err != nil {
			s.warn(diag.PlayTraceMessage, loc, fmt.Sprintf("undecodable message packet at index %d", h.GlobalPacketIndex))
			return
		}
		s.message(msg, loc)
	case packet.PacketMarkerAPIGroupBegin:
		s.stats.Groups++
	case packet.PacketMarkerTerminateProcess:
		trace.Point(tracer, trace.ScopeBackend, "terminate_process", "", parent, map[string]string{
			"index": strconv.FormatUint(h.GlobalPacketIndex, 10),
		})
	}
}

// message forwards a recorded log message with its recorded severity.
func (s *Session) message(msg packet.Message, loc diag.Location) {
	switch msg.Level {
	case packet.LogError:
		s.fail(diag.PlayTraceMessage, loc, msg.Text).Emit()
	case packet.LogWarning:
		s.warn(diag.PlayTraceMessage, loc, msg.Text)
	default:
		diag.ReportInfo(s.reporter, diag.PlayTraceMessage, loc, msg.Text).Emit()
	}
}
