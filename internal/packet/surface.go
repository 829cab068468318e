package packet

// Surface describes where replay output is drawn. It is shared read-only by
// every backend of a session.
type Surface struct {
	Handle uintptr
	Width  uint32
	Height uint32
}

const (
	DefaultSurfaceWidth  = 800
	DefaultSurfaceHeight = 600
)

// DefaultSurface returns a detached 800x600 surface.
func DefaultSurface() Surface {
	return Surface{Width: DefaultSurfaceWidth, Height: DefaultSurfaceHeight}
}

// OrDefault fills zero dimensions with the defaults.
func (s Surface) OrDefault() Surface {
	if s.Width == 0 {
		s.Width = DefaultSurfaceWidth
	}
	if s.Height == 0 {
		s.Height = DefaultSurfaceHeight
	}
	return s
}
