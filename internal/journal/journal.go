// Package journal keeps an append-only record of order lifecycle events
// as one JSON object per line. The journal is informational: the state
// records remain the source of truth, the journal is the audit trail of
// how they got there.
package journal

import (
	"bufio"
	"os"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// Event types recorded in the journal.
const (
	TypeOrderPlaced      = "order_placed"
	TypePaymentConfirmed = "payment_confirmed"
	TypeStageAdvanced    = "stage_advanced"
)

// Entry is a single journal line.
type Entry struct {
	ID      string
	Type    string
	OrderID string
	Status  string
	Stage   string
	At      time.Time
}

// Journal appends entries to a JSONL file. Safe for concurrent use.
type Journal struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open opens the journal file for appending, creating it if needed.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	return &Journal{f: f, path: path}, nil
}

// Append writes one entry. A missing id or timestamp is filled in.
func (j *Journal) Append(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	var enc jx.Encoder
	enc.ObjStart()
	enc.FieldStart("id")
	enc.Str(e.ID)
	enc.FieldStart("type")
	enc.Str(e.Type)
	enc.FieldStart("order_id")
	enc.Str(e.OrderID)
	enc.FieldStart("status")
	enc.Str(e.Status)
	if e.Stage != "" {
		enc.FieldStart("stage")
		enc.Str(e.Stage)
	}
	enc.FieldStart("at")
	enc.Str(e.At.Format(time.RFC3339Nano))
	enc.ObjEnd()

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.f.Write(append(enc.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "append journal entry")
	}
	return nil
}

// ReadOrder returns all entries for the given order id, oldest first.
func (j *Journal) ReadOrder(orderID string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open journal")
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		e, err := decodeEntry(line)
		if err != nil {
			return nil, errors.Wrap(err, "decode journal entry")
		}
		if e.OrderID == orderID {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan journal")
	}
	return entries, nil
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

func decodeEntry(line []byte) (Entry, error) {
	var e Entry
	d := jx.DecodeBytes(line)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			e.ID = v
			return err
		case "type":
			v, err := d.Str()
			e.Type = v
			return err
		case "order_id":
			v, err := d.Str()
			e.OrderID = v
			return err
		case "status":
			v, err := d.Str()
			e.Status = v
			return err
		case "stage":
			v, err := d.Str()
			e.Stage = v
			return err
		case "at":
			v, err := d.Str()
			if err != nil {
				return err
			}
			e.At, err = time.Parse(time.RFC3339Nano, v)
			return err
		default:
			return d.Skip()
		}
	})
	return e, err
}
