package bsdiff

import (
	"time"

	"github.com/itchio/headway/state"
	"github.com/itchio/headway/united"
	"github.com/pkg/errors"
)

// DiffParams holds validated parameters for a diff run (C5).
// Construct with NewDiffParams or DefaultDiffParams; the zero value is
// not valid (SortPartitions would be 0, which NewDiffParams rejects).
type DiffParams struct {
	// SortPartitions is the number of partitions to build the
	// substring index with. Must be >= 1. Higher values trade patch
	// quality for index-build parallelism (spec.md §4.1).
	SortPartitions int

	// ScanChunkSize, when non-nil, splits NEW into chunks of this
	// many bytes and scans them in parallel (spec.md §4.3). Must be
	// >= 1 when set. A nil value runs the single-chunk scanner.
	ScanChunkSize *int
}

// DefaultDiffParams returns the parameter defaults named in spec.md
// §6: sort_partitions=1, scan_chunk_size=none.
func DefaultDiffParams() *DiffParams {
	return &DiffParams{SortPartitions: 1}
}

// NewDiffParams validates and constructs DiffParams. sortPartitions
// must be >= 1. scanChunkSize, if non-nil, must point to a value
// >= 1.
func NewDiffParams(sortPartitions int, scanChunkSize *int) (*DiffParams, error) {
	if sortPartitions < 1 {
		return nil, invalidParameter("sort_partitions must be >= 1, got %d", sortPartitions)
	}
	if scanChunkSize != nil && *scanChunkSize < 1 {
		return nil, invalidParameter("scan_chunk_size must be >= 1 when set, got %d", *scanChunkSize)
	}

	p := &DiffParams{SortPartitions: sortPartitions}
	if scanChunkSize != nil {
		size := *scanChunkSize
		p.ScanChunkSize = &size
	}
	return p, nil
}

// DiffStats accumulates timing and size statistics across one or more
// Do calls on the same DiffContext.
type DiffStats struct {
	TimeSpentSorting  time.Duration
	TimeSpentScanning time.Duration
	BiggestAdd        int64
}

// DiffContext holds parameters, optional stats and progress reporting
// for one or more diffs. It keeps no substring-index state between
// calls: every Do builds a fresh index over its obuf. A DiffContext
// must never be used concurrently by more than one diff at a time.
type DiffContext struct {
	Params *DiffParams

	// Stats, if non-nil, is updated with timing/size information as
	// Do runs.
	Stats *DiffStats

	// Consumer, if non-nil, receives progress labels and messages
	// during index construction and scanning.
	Consumer *state.Consumer
}

// NewDiffContext creates a DiffContext with the given parameters. A
// nil params is replaced with DefaultDiffParams().
func NewDiffContext(params *DiffParams) *DiffContext {
	if params == nil {
		params = DefaultDiffParams()
	}
	return &DiffContext{Params: params}
}

func (ctx *DiffContext) consumer() *state.Consumer {
	if ctx.Consumer != nil {
		return ctx.Consumer
	}
	return &state.Consumer{}
}

// Do is the C5 driver: it builds the substring index over obuf, then
// runs the single-chunk or chunked scan depending on Params, invoking
// onMatch for every emitted Match in order. The first error returned
// by onMatch aborts the remainder of the scan and is propagated,
// wrapped with a stack trace.
func (ctx *DiffContext) Do(obuf, nbuf []byte, onMatch func(Match) error) error {
	consumer := ctx.consumer()

	if ctx.Stats != nil {
		inner := onMatch
		onMatch = func(m Match) error {
			if int64(m.addLength) > ctx.Stats.BiggestAdd {
				ctx.Stats.BiggestAdd = int64(m.addLength)
			}
			return inner(m)
		}
	}

	consumer.ProgressLabel("Building substring index over " + united.FormatBytes(int64(len(obuf))) + "...")
	consumer.Progress(0)

	startSort := time.Now()
	idx := NewPartitionedSuffixArray(obuf, ctx.Params.SortPartitions)
	if ctx.Stats != nil {
		ctx.Stats.TimeSpentSorting += time.Since(startSort)
	}
	consumer.Debugf("substring index built over %s in %s", united.FormatBytes(int64(len(obuf))), time.Since(startSort))

	startScan := time.Now()
	var err error
	if ctx.Params.ScanChunkSize != nil {
		consumer.ProgressLabel("Scanning " + united.FormatBytes(int64(len(nbuf))) + " in chunks of " + united.FormatBytes(int64(*ctx.Params.ScanChunkSize)) + "...")
		err = ParallelScan(obuf, nbuf, idx, *ctx.Params.ScanChunkSize, consumer, onMatch)
	} else {
		consumer.ProgressLabel("Scanning " + united.FormatBytes(int64(len(nbuf))) + "...")
		err = scanInline(obuf, nbuf, idx, onMatch)
	}
	if ctx.Stats != nil {
		ctx.Stats.TimeSpentScanning += time.Since(startScan)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	consumer.Progress(1)
	return nil
}

// scanInline runs a single scanner over the whole of nbuf, forwarding
// every emitted Match to onMatch in scan order. This is the
// single-chunk path used when Params.ScanChunkSize is unset.
func scanInline(obuf, nbuf []byte, idx SubstringIndex, onMatch func(Match) error) error {
	sc := newScanner(obuf, nbuf, idx)
	for {
		m, ok := sc.next()
		if !ok {
			return nil
		}
		if err := onMatch(m); err != nil {
			return err
		}
	}
}

// Diff is a convenience wrapper combining Do and a Translator: it runs
// the driver over obuf/nbuf and emits Control records to sink, closing
// the Translator (and surfacing any error from that final flush) when
// scanning completes.
func Diff(obuf, nbuf []byte, params *DiffParams, consumer *state.Consumer, sink ControlSink) error {
	ctx := NewDiffContext(params)
	ctx.Consumer = consumer

	t := NewTranslator(obuf, nbuf, sink)

	err := ctx.Do(obuf, nbuf, func(m Match) error {
		return t.Translate(m)
	})
	if err != nil {
		return err
	}

	return t.Close()
}
