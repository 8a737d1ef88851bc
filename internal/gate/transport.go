// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"regexp"
	"strings"
)

// transportPattern is a transport request number, e.g. DEVK900123.
var transportPattern = regexp.MustCompile(`^[A-Z]{3}K\d{6}$`)

// TransportCheck is the outcome of EnforceTransport.
type TransportCheck struct {
	Valid     bool   `json:"valid"`
	Transport string `json:"transport"`
	Message   string `json:"message"`
}

// EnforceTransport checks that a carries a well-formed transport number.
func EnforceTransport(a Artifact) TransportCheck {
	tr := a.Transport
	switch {
	case tr == "":
		return TransportCheck{Message: "No transport request assigned"}
	case !transportPattern.MatchString(tr):
		return TransportCheck{Transport: tr, Message: fmt.Sprintf("Transport %q does not match AAAK999999", tr)}
	}
	return TransportCheck{Valid: true, Transport: tr, Message: fmt.Sprintf("Transport %s assigned", tr)}
}

// Stage is one system in the promotion path.
type Stage struct {
	System string `json:"system"`
	Role   string `json:"role"`
	Status string `json:"status"` // current | pending
}

// TransportChain is the promotion path of a transport.
type TransportChain struct {
	Transport    string  `json:"transport"`
	Valid        bool    `json:"valid"`
	Message      string  `json:"message,omitempty"`
	SourceSystem string  `json:"sourceSystem,omitempty"`
	Stages       []Stage `json:"stages,omitempty"`
	CurrentStage string  `json:"currentStage,omitempty"`
	Path         string  `json:"path,omitempty"`
}

var landscape = []Stage{
	{System: "DEV", Role: "development"},
	{System: "QAS", Role: "quality"},
	{System: "PRD", Role: "production"},
}

// ValidateTransportChain returns the DEV → QAS → PRD path for a transport,
// which is always at its first stage.
func ValidateTransportChain(transport string) TransportChain {
	tr := transport
	if !transportPattern.MatchString(tr) {
		return TransportChain{Transport: tr, Message: fmt.Sprintf("Transport %q does not match AAAK999999", tr)}
	}
	stages := make([]Stage, len(landscape))
	names := make([]string, len(landscape))
	for i, s := range landscape {
		s.Status = "pending"
		if i == 0 {
			s.Status = "current"
		}
		stages[i] = s
		names[i] = s.System
	}
	return TransportChain{
		Transport:    tr,
		Valid:        true,
		SourceSystem: tr[:3],
		Stages:       stages,
		CurrentStage: stages[0].System,
		Path:         strings.Join(names, " -> "),
	}
}
