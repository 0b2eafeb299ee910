package bsdiff

import (
	"bytes"
	"runtime"

	"github.com/pkg/errors"
)

// ControlSink receives Control records from a Translator. It is
// called synchronously; neither Control.Add nor Control.Copy is valid
// after the call returns. The first error returned aborts the
// translation and is propagated out of Translate/Close.
type ControlSink func(Control) error

// Translator is the C4 component: it converts a stream of Match
// values into Control records, maintaining the one match of
// look-behind that Seek's definition requires (a record's seek
// depends on the *next* match's add_old_start).
//
// A Translator is single-owner and not safe for concurrent use. If
// Close is never called explicitly, a best-effort close runs when the
// Translator is garbage collected, swallowing any sink error from
// that path -- the same convention os.File uses for an unclosed file.
type Translator struct {
	obuf []byte
	nbuf []byte

	buf       bytes.Buffer
	prevMatch Match
	hasPrev   bool
	closed    bool

	onControl ControlSink
}

// NewTranslator creates a Translator over obuf/nbuf, delivering
// Control records to sink as they become final.
func NewTranslator(obuf, nbuf []byte, sink ControlSink) *Translator {
	t := &Translator{
		obuf:      obuf,
		nbuf:      nbuf,
		onControl: sink,
	}
	runtime.SetFinalizer(t, (*Translator).finalize)
	return t
}

// Translate consumes one Match, emitting a Control for the
// previously-held match (now that its seek is known) and staging m's
// diff bytes for the next call.
func (t *Translator) Translate(m Match) error {
	if err := t.sendControl(&m); err != nil {
		return err
	}

	t.buf.Reset()
	t.buf.Grow(m.addLength)
	for i := 0; i < m.addLength; i++ {
		t.buf.WriteByte(t.nbuf[m.addNewStart+i] - t.obuf[m.addOldStart+i])
	}

	t.prevMatch = m
	t.hasPrev = true
	return nil
}

// sendControl emits a Control for the currently-held match, if any.
// next is the match that follows it (nil for the final, closing
// call), used to compute Seek.
func (t *Translator) sendControl(next *Match) error {
	if !t.hasPrev {
		return nil
	}
	pm := t.prevMatch
	t.hasPrev = false

	if next != nil && next.addNewStart != pm.copyEnd {
		return errors.Errorf("bsdiff: translator contiguity violated: next match starts at %d, previous match's copy region ends at %d", next.addNewStart, pm.copyEnd)
	}

	seek := int64(0)
	if next != nil {
		seek = int64(next.addOldStart) - int64(pm.addOldStart+pm.addLength)
	}

	return t.onControl(Control{
		Add:  t.buf.Bytes()[:pm.addLength],
		Copy: t.nbuf[pm.copyStart():pm.copyEnd],
		Seek: seek,
	})
}

// Close flushes the final Control record (seek always zero) if one is
// pending. Close is idempotent: calling it more than once only emits
// the final record on the first call.
func (t *Translator) Close() error {
	if t.closed {
		return nil
	}
	if err := t.sendControl(nil); err != nil {
		return err
	}
	t.closed = true
	runtime.SetFinalizer(t, nil)
	return nil
}

// finalize performs a best-effort Close from the garbage collector,
// swallowing any sink error -- Close should be preferred when the
// caller needs to observe that error.
func (t *Translator) finalize() {
	_ = t.Close()
}
