// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package approval holds the human-approval workflow: requests filed by
// the gate engine and decided by a named approver.
package approval

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marcelocantos/erpkit/internal/audit"
)

var (
	ErrNotFound        = errors.New("approval request not found")
	ErrNotPending      = errors.New("approval request is not pending")
	ErrMissingApprover = errors.New("approver is required")
	ErrMissingReason   = errors.New("rejection reason is required")
)

// Status is the state of a request. Transitions are pending to approved
// or pending to rejected; both are terminal.
type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

// Subject identifies the artifact a request is about.
type Subject struct {
	Name      string
	Type      string
	Transport string
}

// Request is one approval record.
type Request struct {
	ID           string             `json:"approvalId"`
	ArtifactName string             `json:"artifactName"`
	ArtifactType string             `json:"artifactType"`
	Transport    string             `json:"transport,omitempty"`
	GateResults  []audit.GateRecord `json:"gateResults"`
	Status       Status             `json:"status"`
	RequestedAt  time.Time          `json:"requestedAt"`
	Approver     string             `json:"approver,omitempty"`
	DecidedAt    time.Time          `json:"approvedAt,omitzero"`
	Comments     string             `json:"comments,omitempty"`
	Reason       string             `json:"reason,omitempty"`
}

func (r *Request) snapshot() Request {
	c := *r
	c.GateResults = append([]audit.GateRecord(nil), r.GateResults...)
	return c
}

// Store is the in-memory approval store.
type Store struct {
	mu       sync.RWMutex
	seq      int
	requests map[string]*Request
	approved map[string]bool // artifact name → has an approved record
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		requests: make(map[string]*Request),
		approved: make(map[string]bool),
		now:      time.Now,
	}
}

// RequestApproval files a pending request and returns its snapshot.
func (s *Store) RequestApproval(subj Subject, results []audit.GateRecord) (Request, error) {
	if strings.TrimSpace(subj.Name) == "" {
		return Request{}, fmt.Errorf("request approval: artifact name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r := &Request{
		ID:           fmt.Sprintf("APR-%06d", s.seq),
		ArtifactName: subj.Name,
		ArtifactType: subj.Type,
		Transport:    subj.Transport,
		GateResults:  append([]audit.GateRecord(nil), results...),
		Status:       Pending,
		RequestedAt:  s.now().UTC(),
	}
	s.requests[r.ID] = r
	return r.snapshot(), nil
}

// Approve moves a pending request to approved.
func (s *Store) Approve(id, approver, comments string) (Request, error) {
	if strings.TrimSpace(approver) == "" {
		return Request{}, ErrMissingApprover
	}
	return s.decide(id, func(r *Request) {
		r.Status = Approved
		r.Approver = approver
		r.Comments = comments
		s.approved[r.ArtifactName] = true
	})
}

// Reject moves a pending request to rejected.
func (s *Store) Reject(id, approver, reason string) (Request, error) {
	if strings.TrimSpace(approver) == "" {
		return Request{}, ErrMissingApprover
	}
	if strings.TrimSpace(reason) == "" {
		return Request{}, ErrMissingReason
	}
	return s.decide(id, func(r *Request) {
		r.Status = Rejected
		r.Approver = approver
		r.Reason = reason
	})
}

func (s *Store) decide(id string, apply func(*Request)) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.Status != Pending {
		return Request{}, fmt.Errorf("%w: %s is %s", ErrNotPending, id, r.Status)
	}
	apply(r)
	r.DecidedAt = s.now().UTC()
	return r.snapshot(), nil
}

// Preapprove records an approved request on behalf of approver, used to
// seed trusted artifacts from configuration.
func (s *Store) Preapprove(name, approver string) (Request, error) {
	r, err := s.RequestApproval(Subject{Name: name}, nil)
	if err != nil {
		return Request{}, err
	}
	return s.Approve(r.ID, approver, "preapproved")
}

// Get returns a snapshot of one request.
func (s *Store) Get(id string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.snapshot(), nil
}

// Pending returns snapshots of the pending requests ordered by id.
func (s *Store) Pending() []Request {
	return s.list(func(r *Request) bool { return r.Status == Pending })
}

// PendingFor returns the pending request for an artifact, if any.
func (s *Store) PendingFor(name string) (Request, bool) {
	for _, r := range s.Pending() {
		if r.ArtifactName == name {
			return r, true
		}
	}
	return Request{}, false
}

// All returns snapshots of every request ordered by id.
func (s *Store) All() []Request {
	return s.list(func(*Request) bool { return true })
}

func (s *Store) list(keep func(*Request) bool) []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Request
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsApproved reports whether any approved request exists for name.
func (s *Store) IsApproved(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approved[name]
}
