// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"errors"
	"testing"

	"github.com/marcelocantos/erpkit/internal/audit"
)

func TestRequestIDs(t *testing.T) {
	s := NewStore()
	for i, want := range []string{"APR-000001", "APR-000002", "APR-000003"} {
		r, err := s.RequestApproval(Subject{Name: "Z_REPORT", Type: "program"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if r.ID != want {
			t.Errorf("request %d: id %q, want %q", i, r.ID, want)
		}
		if r.Status != Pending {
			t.Errorf("request %d: status %q", i, r.Status)
		}
	}
	if got := len(s.Pending()); got != 3 {
		t.Errorf("Pending() len = %d, want 3", got)
	}
}

func TestRequestRequiresName(t *testing.T) {
	if _, err := NewStore().RequestApproval(Subject{}, nil); err == nil {
		t.Fatal("expected error for empty artifact name")
	}
}

func TestApprove(t *testing.T) {
	s := NewStore()
	r, _ := s.RequestApproval(Subject{Name: "Z_REPORT"}, []audit.GateRecord{{Name: "human-approval", Status: "pending_review"}})
	if s.IsApproved("Z_REPORT") {
		t.Fatal("approved before decision")
	}
	got, err := s.Approve(r.ID, "alice", "looks fine")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != Approved || got.Approver != "alice" || got.DecidedAt.IsZero() {
		t.Errorf("approved request = %+v", got)
	}
	if !s.IsApproved("Z_REPORT") {
		t.Error("IsApproved false after approval")
	}

	// A later rejected request for the same name does not revoke approval.
	r2, _ := s.RequestApproval(Subject{Name: "Z_REPORT"}, nil)
	if _, err := s.Reject(r2.ID, "bob", "changed"); err != nil {
		t.Fatal(err)
	}
	if !s.IsApproved("Z_REPORT") {
		t.Error("IsApproved reverted")
	}
}

func TestDecisionErrors(t *testing.T) {
	s := NewStore()
	r, _ := s.RequestApproval(Subject{Name: "Z_REPORT"}, nil)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"approve missing", func() error { _, err := s.Approve("APR-999999", "alice", ""); return err }, ErrNotFound},
		{"approve no approver", func() error { _, err := s.Approve(r.ID, " ", ""); return err }, ErrMissingApprover},
		{"reject no reason", func() error { _, err := s.Reject(r.ID, "alice", ""); return err }, ErrMissingReason},
		{"reject no approver", func() error { _, err := s.Reject(r.ID, "", "bad"); return err }, ErrMissingApprover},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := s.Reject(r.ID, "alice", "unsafe"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Approve(r.ID, "alice", ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("approve after reject: err = %v, want ErrNotPending", err)
	}
	if s.IsApproved("Z_REPORT") {
		t.Error("rejected artifact reported approved")
	}
	if len(s.Pending()) != 0 {
		t.Error("decided request still pending")
	}
}

func TestSnapshots(t *testing.T) {
	s := NewStore()
	r, _ := s.RequestApproval(Subject{Name: "Z_A"}, []audit.GateRecord{{Name: "g", Status: "warning"}})
	r.GateResults[0].Status = "failed"
	got, err := s.Get(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GateResults[0].Status != "warning" {
		t.Error("store mutated through snapshot")
	}
}

func TestPreapprove(t *testing.T) {
	s := NewStore()
	if _, err := s.Preapprove("Z_TRUSTED", "config"); err != nil {
		t.Fatal(err)
	}
	if !s.IsApproved("Z_TRUSTED") {
		t.Error("preapproved artifact not approved")
	}
	if _, ok := s.PendingFor("Z_TRUSTED"); ok {
		t.Error("preapproval left a pending request")
	}
	if len(s.All()) != 1 {
		t.Errorf("All() len = %d, want 1", len(s.All()))
	}
}
