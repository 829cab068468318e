package trace

import "errors"

// Tee forwards every event to several tracers.
type Tee struct {
	sinks []Tracer
	level Level
}

func NewTee(level Level, sinks ...Tracer) *Tee {
	return &Tee{sinks: sinks, level: level}
}

// Emit hands each sink its own copy; sinks stamp their own sequence numbers.
func (t *Tee) Emit(ev *Event) {
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (t *Tee) Close() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (t *Tee) Level() Level  { return t.level }
func (t *Tee) Enabled() bool { return t.level > LevelOff }

// Ring returns the ring buffer behind t, if any.
func Ring(t Tracer) *RingTracer {
	switch tr := t.(type) {
	case *RingTracer:
		return tr
	case *Tee:
		for _, s := range tr.sinks {
			if r := Ring(s); r != nil {
				return r
			}
		}
	}
	return nil
}
