package bsdiff

import (
	"runtime"

	"github.com/itchio/headway/state"
)

// chunkWorkerState is one chunk-scanning worker's channel trio: a
// single-slot work queue, a consumed token gating the next dispatch,
// and a bounded result channel the collector drains in chunk order.
// This mirrors the teacher's blockWorkerState almost exactly, only
// renamed from "block" to "chunk" to match spec.md's vocabulary and
// generalized from a fixed 128KiB block size to the caller-supplied
// chunk size.
type chunkWorkerState struct {
	work     chan int
	matches  chan Match
	consumed chan bool
}

// chunkEOC is sent on a worker's matches channel to mark "this chunk
// is done", so the collector knows when to stop draining one chunk
// and move to the next, without a second control channel.
var chunkEOC = Match{addOldStart: -1}

// ParallelScan is the C3 component: it splits nbuf into fixed-size
// chunks, scans each chunk independently (against the shared idx)
// using a bounded pool of worker goroutines, and forwards matches to
// onMatch strictly in chunk order, with add_new_start/copy_end fixed
// up by the chunk's byte offset. Within a chunk, matches are forwarded
// in the scanner's own emission order, so contiguity
// (next.add_new_start == prev.copy_end) is preserved across the whole
// forwarded stream.
//
// No match coalescing happens across chunk boundaries: this trades a
// small amount of patch quality (a match can never span two chunks)
// for scan parallelism, exactly as spec.md §4.3 documents.
func ParallelScan(obuf, nbuf []byte, idx SubstringIndex, chunkSize int, consumer *state.Consumer, onMatch func(Match) error) error {
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	nbuflen := len(nbuf)
	numChunks := (nbuflen + chunkSize - 1) / chunkSize
	if numChunks == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > numChunks {
		numWorkers = numChunks
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	workers := make([]chunkWorkerState, numWorkers)
	for i := range workers {
		workers[i] = chunkWorkerState{
			work:     make(chan int, 1),
			matches:  make(chan Match, 256),
			consumed: make(chan bool, 1),
		}
		workers[i].consumed <- true
	}

	for i := range workers {
		w := workers[i]
		go func() {
			for chunkIndex := range w.work {
				offset := chunkIndex * chunkSize
				end := offset + chunkSize
				if end > nbuflen {
					end = nbuflen
				}

				sc := newScanner(obuf, nbuf[offset:end], idx)
				for {
					m, ok := sc.next()
					if !ok {
						break
					}
					w.matches <- m
				}
				w.matches <- chunkEOC
			}
		}()
	}

	go func() {
		workerIndex := 0
		for chunkIndex := 0; chunkIndex < numChunks; chunkIndex++ {
			<-workers[workerIndex].consumed
			workers[workerIndex].work <- chunkIndex
			workerIndex = (workerIndex + 1) % numWorkers
		}
		for i := range workers {
			close(workers[i].work)
		}
	}()

	var firstErr error
	workerIndex := 0
	for chunkIndex := 0; chunkIndex < numChunks; chunkIndex++ {
		consumer.Progress(float64(chunkIndex) / float64(numChunks))

		offset := chunkIndex * chunkSize
		w := workers[workerIndex]

		for m := range w.matches {
			if m == chunkEOC {
				break
			}
			if firstErr == nil {
				m.addNewStart += offset
				m.copyEnd += offset
				if err := onMatch(m); err != nil {
					firstErr = err
				}
			}
		}

		w.consumed <- true
		workerIndex = (workerIndex + 1) % numWorkers
	}

	return firstErr
}
