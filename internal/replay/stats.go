package replay

// Stats counts what a walk did. Every packet lands in exactly one of
// Controls, Replayed, Failed or Skipped.
type Stats struct {
	Packets  int
	Controls int
	Messages int
	Groups   int
	Replayed int
	Failed   int
	Skipped  int
	Warnings int
	Errors   int
}

// Clean reports whether every API call replayed and nothing was skipped.
func (s Stats) Clean() bool {
	return s.Failed == 0 && s.Skipped == 0 && s.Errors == 0
}

func (s *Stats) sub(o Stats) {
	s.Packets -= o.Packets
	s.Controls -= o.Controls
	s.Messages -= o.Messages
	s.Groups -= o.Groups
	s.Replayed -= o.Replayed
	s.Failed -= o.Failed
	s.Skipped -= o.Skipped
	s.Warnings -= o.Warnings
	s.Errors -= o.Errors
}
