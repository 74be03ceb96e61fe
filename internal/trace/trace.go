// Package trace persists the transparency log of a run: an append-only
// record per step plus the terminal outcome, lossless enough to replay the
// full belief trajectory and every tool invocation outcome.
//
// Two parallel encodings are written: trace.ndjson (line-delimited JSON, a
// live human-greppable feed) and trace.bin (msgpack records chained with
// blake3 content hashes, so replay can verify nothing was dropped or
// edited). final.json summarizes the terminal outcome.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/avetrov/adscope/internal/diagnose"
	"github.com/avetrov/adscope/internal/rules"
)

const (
	ndjsonFile = "trace.ndjson"
	binFile    = "trace.bin"
	finalFile  = "final.json"

	kindStep  = "step"
	kindFinal = "final"
)

// FinalDoc is the terminal outcome document.
type FinalDoc struct {
	RunID       string                      `json:"run_id"`
	Status      string                      `json:"status"`
	Reason      diagnose.TerminationReason  `json:"reason"`
	Winner      rules.HypothesisID          `json:"winner,omitempty"`
	Belief      float64                     `json:"belief,omitempty"`
	Steps       int                         `json:"steps"`
	Observation string                      `json:"observation,omitempty"`
	Ranked      []diagnose.RankedHypothesis `json:"ranked"`
}

// binRecord is one frame of trace.bin. Hash = blake3(PrevHash || Payload);
// PrevHash of the first record is empty.
type binRecord struct {
	Seq      int    `msgpack:"seq"`
	Kind     string `msgpack:"kind"`
	PrevHash []byte `msgpack:"prev_hash"`
	Hash     []byte `msgpack:"hash"`
	Payload  []byte `msgpack:"payload"`
}

type ndjsonLine struct {
	Type  string               `json:"type"`
	Step  *diagnose.StepRecord `json:"step,omitempty"`
	Final *FinalDoc            `json:"final,omitempty"`
}

// Writer satisfies diagnose.Sink. Failures are sticky and retrievable via
// Err, but never surface into the engine: the run must not block on, or die
// from, log delivery.
type Writer struct {
	dir   string
	runID string

	mu     sync.Mutex
	seq    int
	prev   []byte
	ndjson *os.File
	bin    *os.File
	err    error
}

// NewWriter creates the trace directory and its files.
func NewWriter(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	nd, err := os.Create(filepath.Join(dir, ndjsonFile))
	if err != nil {
		return nil, err
	}
	bin, err := os.Create(filepath.Join(dir, binFile))
	if err != nil {
		nd.Close()
		return nil, err
	}
	return &Writer{dir: dir, runID: runID, ndjson: nd, bin: bin}, nil
}

// Dir returns the trace directory.
func (w *Writer) Dir() string { return w.dir }

// Err returns the first persistence error, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Step appends one step record.
func (w *Writer) Step(rec diagnose.StepRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	payload, err := json.Marshal(rec)
	if err != nil {
		w.setErr(err)
		return
	}
	w.appendLocked(kindStep, payload, ndjsonLine{Type: kindStep, Step: &rec})
}

// Finalized appends the terminal record and writes final.json.
func (w *Writer) Finalized(actx *diagnose.AgentContext) {
	doc := Summarize(actx)

	w.mu.Lock()
	defer w.mu.Unlock()
	payload, err := json.Marshal(doc)
	if err != nil {
		w.setErr(err)
		return
	}
	w.appendLocked(kindFinal, payload, ndjsonLine{Type: kindFinal, Final: &doc})

	if err := os.WriteFile(filepath.Join(w.dir, finalFile), append(payload, '\n'), 0o644); err != nil {
		w.setErr(err)
	}
}

// Summarize builds the terminal outcome doc for a finalized context.
func Summarize(actx *diagnose.AgentContext) FinalDoc {
	doc := FinalDoc{
		RunID:       actx.RunID,
		Status:      "success",
		Reason:      actx.Reason,
		Steps:       actx.Step,
		Observation: actx.Observation,
		Ranked:      actx.Ranked,
	}
	if len(actx.Ranked) > 0 {
		doc.Winner = actx.Ranked[0].ID
		doc.Belief = actx.Ranked[0].Belief
	}
	return doc
}

// Close flushes and closes both files.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ndjson.Close(); err != nil {
		w.setErr(err)
	}
	if err := w.bin.Close(); err != nil {
		w.setErr(err)
	}
	return w.err
}

func (w *Writer) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) appendLocked(kind string, payload []byte, line ndjsonLine) {
	rec := binRecord{
		Seq:      w.seq,
		Kind:     kind,
		PrevHash: w.prev,
		Hash:     chainHash(w.prev, payload),
		Payload:  payload,
	}
	b, err := msgpack.Marshal(rec)
	if err != nil {
		w.setErr(err)
		return
	}
	if _, err := w.bin.Write(b); err != nil {
		w.setErr(err)
		return
	}

	lb, err := json.Marshal(line)
	if err != nil {
		w.setErr(err)
		return
	}
	if _, err := w.ndjson.Write(append(lb, '\n')); err != nil {
		w.setErr(err)
		return
	}

	w.seq++
	w.prev = rec.Hash
}

func chainHash(prev, payload []byte) []byte {
	h := blake3.New()
	h.Write(prev)
	h.Write(payload)
	return h.Sum(nil)
}

// Trace is a reloaded run.
type Trace struct {
	Steps []diagnose.StepRecord
	Final *FinalDoc
}

// Load reads trace.bin back, verifying the hash chain. A broken chain means
// the persisted trace cannot faithfully replay the run and is an error.
func Load(dir string) (*Trace, error) {
	f, err := os.Open(filepath.Join(dir, binFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &Trace{}
	dec := msgpack.NewDecoder(f)
	var prev []byte
	for seq := 0; ; seq++ {
		var rec binRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("trace %s: decode record %d: %w", dir, seq, err)
		}
		if rec.Seq != seq {
			return nil, fmt.Errorf("trace %s: record %d out of order (seq %d)", dir, seq, rec.Seq)
		}
		if !bytes.Equal(rec.PrevHash, prev) {
			return nil, fmt.Errorf("trace %s: chain broken at seq %d", dir, seq)
		}
		if !bytes.Equal(rec.Hash, chainHash(prev, rec.Payload)) {
			return nil, fmt.Errorf("trace %s: content hash mismatch at seq %d", dir, seq)
		}
		prev = rec.Hash

		switch rec.Kind {
		case kindStep:
			var sr diagnose.StepRecord
			if err := json.Unmarshal(rec.Payload, &sr); err != nil {
				return nil, fmt.Errorf("trace %s: decode step %d: %w", dir, seq, err)
			}
			t.Steps = append(t.Steps, sr)
		case kindFinal:
			var fd FinalDoc
			if err := json.Unmarshal(rec.Payload, &fd); err != nil {
				return nil, fmt.Errorf("trace %s: decode final: %w", dir, err)
			}
			t.Final = &fd
		default:
			return nil, fmt.Errorf("trace %s: unknown record kind %q at seq %d", dir, rec.Kind, seq)
		}
	}
	if len(t.Steps) == 0 && t.Final == nil {
		return nil, fmt.Errorf("trace %s: empty", dir)
	}
	return t, nil
}
