package engine

import (
	"log/slog"

	"github.com/roach88/retrace/internal/capture"
	"github.com/roach88/retrace/internal/graph"
)

// CaptureRendered captures v and projects the anchored graph to the
// rendered surface in capture mode: anchors stripped, wrappers unwrapped,
// references preserved (and logged, since nothing local can satisfy them
// anymore). Non-throwing; suitable for logs and inspection output.
func CaptureRendered(c *capture.Capturer, v any, logger *slog.Logger) graph.Node {
	if c == nil {
		c = capture.New()
	}
	anchored := c.Capture(v)
	proj := &Projector{Logger: logger}
	return proj.Project(anchored, ModeCapture)
}

// CaptureRenderedChecked is the tightened variant: it fails when any
// reference survives projection without a same-pass anchor. Used for
// defensive testing of the capture/projection pair, not for normal
// operation.
func CaptureRenderedChecked(c *capture.Capturer, v any, logger *slog.Logger) (graph.Node, error) {
	rendered := CaptureRendered(c, v, logger)
	if orphans := FindLocalOrphanRefs(rendered); len(orphans) > 0 {
		return nil, NewStrictCaptureError(orphans)
	}
	return rendered, nil
}
