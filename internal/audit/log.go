// Package audit keeps the append-only, hash-chained record of every
// artifact validation for the life of the process.
package audit

import (
	"bufio"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

const genesisInput = "erpkit-audit-genesis"

// Log is an in-memory, append-only audit log. Readers get snapshots.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	prevHash string
	now      func() time.Time
}

// New creates an empty log.
func New() *Log {
	return &Log{prevHash: genesisHash(), now: time.Now}
}

// Append stamps e with sequence, id (when empty), timestamp and hashes,
// stores it, and returns the stored copy.
func (l *Log) Append(e Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	if e.ID == "" {
		id, err := NewID(now)
		if err != nil {
			return Entry{}, err
		}
		e.ID = id
	}
	if e.Event == "" {
		e.Event = EventValidation
	}
	e = e.clone()
	e.Seq = uint64(len(l.entries)) + 1
	e.Timestamp = now
	e.PrevHash = l.prevHash
	e.Hash = computeHash(e)

	l.entries = append(l.entries, e)
	l.prevHash = e.Hash
	return e.clone(), nil
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a snapshot of all entries, oldest first.
func (l *Log) Entries() []Entry {
	return l.Tail(-1)
}

// Tail returns the last n entries, oldest first. n < 0 returns all.
func (l *Log) Tail(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for _, e := range l.entries[len(l.entries)-n:] {
		out = append(out, e.clone())
	}
	return out
}

// Verify checks the hash chain of the stored entries.
func (l *Log) Verify() error {
	return verifyChain(l.Entries())
}

// Export writes the entries to w as JSON lines.
func (l *Log) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range l.Entries() {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("export audit entry %d: %w", e.Seq, err)
		}
	}
	return nil
}

// VerifyJSONL reads exported entries from r and checks the chain.
func VerifyJSONL(r io.Reader) (int, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return 0, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read audit log: %w", err)
	}
	return len(entries), verifyChain(entries)
}

func verifyChain(entries []Entry) error {
	expectedPrev := genesisHash()
	var prevSeq uint64
	for _, e := range entries {
		if e.Seq != prevSeq+1 {
			return fmt.Errorf("entry %s: sequence gap: expected %d, got %d", e.ID, prevSeq+1, e.Seq)
		}
		if e.PrevHash != expectedPrev {
			return fmt.Errorf("entry %d: prevHash mismatch: expected %s, got %s", e.Seq, short(expectedPrev), short(e.PrevHash))
		}
		if computed := computeHash(e); e.Hash != computed {
			return fmt.Errorf("entry %d: hash mismatch: expected %s, got %s", e.Seq, short(computed), short(e.Hash))
		}
		expectedPrev = e.Hash
		prevSeq = e.Seq
	}
	return nil
}

// NewID returns an identifier of the form AUDIT-<unix-millis>-<6 hex>.
func NewID(now time.Time) (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("audit id: %w", err)
	}
	return fmt.Sprintf("AUDIT-%d-%s", now.UnixMilli(), hex.EncodeToString(b[:])), nil
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return hex.EncodeToString(h[:])
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func short(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}
