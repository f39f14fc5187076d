package detector

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/kitadl/rome/diag"
	"github.com/kitadl/rome/hit"
)

// sink is an in-memory append-only log of hit text lines, mirrored to
// an optional backing writer. A write failure against the backing
// writer is surfaced to the diagnostic log but never drops the
// in-memory copy (§7: "I/O error opening log file: surfaced... memory
// log is preserved").
type sink struct {
	name    string
	memory  bytes.Buffer
	backing io.Writer
	log     *slog.Logger
}

func newSink(name string, backing io.Writer, log *slog.Logger) *sink {
	return &sink{name: name, backing: backing, log: diag.Logger(log)}
}

func (s *sink) writeLine(line string) {
	s.memory.WriteString(line)
	s.memory.WriteByte('\n')
	if s.backing == nil {
		return
	}
	if _, err := fmt.Fprintln(s.backing, line); err != nil {
		s.log.Error("sink write failed", "sink", s.name, "error", err)
	}
}

// lostSink adapts sink to hit.Sink, formatting each lost hit as a
// verbose text line annotated with the loss reason.
type lostSink struct {
	*sink
}

func (s lostSink) Lost(h hit.Hit, reason string, t int) {
	annotated := h
	annotated.Annotate(reason, t)
	s.writeLine(annotated.Format(false))
}
