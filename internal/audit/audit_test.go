package audit

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"
)

func appendN(t *testing.T, l *Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := l.Append(Entry{
			ArtifactName: "Z_REPORT",
			ArtifactType: "program",
			Transport:    "DEVK900001",
			GateResults:  []GateRecord{{Name: "syntax-check", Status: "passed", Message: "ok"}},
			Strictness:   "moderate",
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestAppendAndVerify(t *testing.T) {
	l := New()
	appendN(t, l, 5)
	if l.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", l.Len())
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	entries := l.Entries()
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d: seq %d", i, e.Seq)
		}
		if e.Event != EventValidation {
			t.Errorf("entry %d: event %q", i, e.Event)
		}
	}
}

var idPattern = regexp.MustCompile(`^AUDIT-\d+-[0-9a-f]{6}$`)

func TestIDFormat(t *testing.T) {
	l := New()
	l.now = func() time.Time { return time.UnixMilli(1710000000123) }
	e, err := l.Append(Entry{ArtifactName: "Z_X"})
	if err != nil {
		t.Fatal(err)
	}
	if !idPattern.MatchString(e.ID) {
		t.Errorf("id %q does not match %s", e.ID, idPattern)
	}
	if !strings.HasPrefix(e.ID, "AUDIT-1710000000123-") {
		t.Errorf("id %q does not carry the timestamp", e.ID)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	l := New()
	appendN(t, l, 1)
	snap := l.Entries()
	snap[0].GateResults[0].Status = "failed"
	if got := l.Entries()[0].GateResults[0].Status; got != "passed" {
		t.Errorf("stored entry mutated through snapshot: %q", got)
	}
}

func TestTail(t *testing.T) {
	l := New()
	appendN(t, l, 4)
	tests := []struct {
		n       int
		want    int
		lastSeq uint64
	}{
		{2, 2, 4},
		{10, 4, 4},
		{0, 0, 0},
		{-1, 4, 4},
	}
	for _, tt := range tests {
		got := l.Tail(tt.n)
		if len(got) != tt.want {
			t.Errorf("Tail(%d) len = %d, want %d", tt.n, len(got), tt.want)
			continue
		}
		if tt.want > 0 && got[len(got)-1].Seq != tt.lastSeq {
			t.Errorf("Tail(%d) last seq = %d, want %d", tt.n, got[len(got)-1].Seq, tt.lastSeq)
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	l := New()
	appendN(t, l, 3)
	l.entries[1].OverallApproved = true
	if err := l.Verify(); err == nil {
		t.Fatal("expected verify to detect tampering")
	}
}

func TestExportRoundTripVerifies(t *testing.T) {
	l := New()
	appendN(t, l, 3)
	var buf bytes.Buffer
	if err := l.Export(&buf); err != nil {
		t.Fatal(err)
	}
	n, err := VerifyJSONL(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("verify exported log: %v", err)
	}
	if n != 3 {
		t.Errorf("verified %d entries, want 3", n)
	}
}

func TestVerifyJSONLDetectsGap(t *testing.T) {
	l := New()
	appendN(t, l, 5)
	var buf bytes.Buffer
	if err := l.Export(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	remaining := append(lines[:2], lines[3:]...)
	if _, err := VerifyJSONL(strings.NewReader(strings.Join(remaining, "\n"))); err == nil {
		t.Fatal("expected verify to detect sequence gap")
	}
}

func TestVerifyEmpty(t *testing.T) {
	if err := New().Verify(); err != nil {
		t.Fatalf("empty log should be valid: %v", err)
	}
	if _, err := VerifyJSONL(strings.NewReader("")); err != nil {
		t.Fatalf("empty stream should be valid: %v", err)
	}
}
