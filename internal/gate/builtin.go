// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/approval"
	"github.com/marcelocantos/erpkit/internal/audit"
)

// Built-in gate names.
const (
	LiveModeAudit    = "live-mode-audit"
	SyntaxCheck      = "syntax-check"
	ATCCheck         = "atc-check"
	NamingConvention = "naming-convention"
	TransportGate    = "transport-required"
	UnitTestCoverage = "unit-test-coverage"
	HumanApproval    = "human-approval"
)

func registerBuiltins(e *Engine) {
	liveOpts := []Option{WithPriority(5), Optional()}
	if !e.live {
		liveOpts = append(liveOpts, Disabled())
	}
	must(e.Register(LiveModeAudit, checkLiveModeAudit, liveOpts...))
	must(e.Register(SyntaxCheck, checkSyntaxGate, WithPriority(10), For(CodeTypes...)))
	must(e.Register(ATCCheck, checkATC, WithPriority(20), For(CodeTypes...)))
	must(e.Register(NamingConvention, checkNaming, WithPriority(30)))
	must(e.Register(TransportGate, checkTransport, WithPriority(40)))
	must(e.Register(UnitTestCoverage, checkUnitTests, WithPriority(50), Optional(), For(CodeTypes...)))
	must(e.Register(HumanApproval, checkHumanApproval, WithPriority(90)))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func checkLiveModeAudit(_ context.Context, a *Artifact, env Env) (Result, error) {
	hash := rollingHash(a.Source)
	env.Logger.Info("live-mode artifact access",
		zap.String("artifact", a.Name),
		zap.String("type", string(a.Type)),
		zap.String("transport", a.Transport),
		zap.String("source_hash", hash))
	entry, err := env.Audit.Append(audit.Entry{
		Event:        audit.EventLiveAccess,
		ArtifactName: a.Name,
		ArtifactType: string(a.Type),
		Transport:    a.Transport,
		Strictness:   string(env.Strictness),
		SourceHash:   hash,
	})
	if err != nil {
		env.Logger.Error("audit append failed", zap.String("artifact", a.Name), zap.Error(err))
	}
	return Result{
		Status:  Passed,
		Message: "Live-mode access recorded",
		Details: map[string]any{"sourceHash": hash, "auditId": entry.ID},
	}, nil
}

func checkSyntaxGate(_ context.Context, a *Artifact, _ Env) (Result, error) {
	if strings.TrimSpace(a.Source) == "" {
		return Result{Status: Warning, Message: "No source provided; syntax not checked"}, nil
	}
	rep := checkSyntax(a.Source)
	details := map[string]any{"statements": rep.Statements}
	if len(rep.Empty) > 0 {
		details["emptyImplementations"] = rep.Empty
	}
	if len(rep.Mismatches) > 0 {
		details["mismatches"] = rep.Mismatches
		return Result{Status: Failed, Message: strings.Join(rep.Mismatches, "; "), Details: details}, nil
	}
	if len(rep.Empty) > 0 {
		return Result{Status: Warning, Message: strings.Join(rep.Empty, "; "), Details: details}, nil
	}
	return Result{Status: Passed, Message: fmt.Sprintf("%d statements, blocks balanced", rep.Statements), Details: details}, nil
}

func checkATC(_ context.Context, a *Artifact, env Env) (Result, error) {
	if strings.TrimSpace(a.Source) == "" {
		return Result{Status: Passed, Message: "No source to analyze"}, nil
	}
	findings := scanATC(a.Source)
	critical := 0
	for _, f := range findings {
		if f.Critical {
			critical++
		}
	}
	details := map[string]any{
		"findings": findings,
		"critical": critical,
		"warnings": len(findings) - critical,
	}
	switch {
	case critical > 0:
		return Result{Status: Failed, Message: fmt.Sprintf("%d critical ATC finding(s)", critical), Details: details}, nil
	case len(findings) > 0:
		return Result{
			Status:  env.Strictness.escalate(),
			Message: fmt.Sprintf("%d S/4HANA readiness finding(s)", len(findings)),
			Details: details,
		}, nil
	}
	return Result{Status: Passed, Message: "No ATC findings", Details: details}, nil
}

// namePrefixes are the customer-namespace prefixes per artifact type.
var namePrefixes = map[ArtifactType][]string{
	Program:        {"Z", "Y"},
	Include:        {"Z", "Y"},
	Class:          {"ZCL_", "YCL_"},
	FunctionModule: {"Z_", "Y_"},
	Interface:      {"ZIF_", "YIF_"},
}

// namespaced matches a registered /NAMESPACE/ prefix.
var namespaced = regexp.MustCompile(`^/[A-Z0-9_]+/`)

const (
	maxNameLength     = 30
	minDescriptionLen = 10
)

func checkNaming(_ context.Context, a *Artifact, env Env) (Result, error) {
	var failures, warnings []string
	upper := strings.ToUpper(a.Name)

	if n := len([]rune(a.Name)); n > maxNameLength {
		failures = append(failures, fmt.Sprintf("name exceeds %d characters (%d)", maxNameLength, n))
	}
	if strings.IndexFunc(a.Name, unicode.IsSpace) >= 0 {
		failures = append(failures, "name contains whitespace")
	}
	if prefixes, ok := namePrefixes[a.Type]; ok && !namespaced.MatchString(upper) && !hasAnyPrefix(upper, prefixes) {
		failures = append(failures, fmt.Sprintf("%s name must start with %s", a.Type, strings.Join(prefixes, " or ")))
	}
	if a.Name != upper {
		msg := "name should be uppercase"
		if env.Strictness == Strict {
			failures = append(failures, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}
	desc, _ := a.meta("description")
	if s, _ := desc.(string); len([]rune(strings.TrimSpace(s))) < minDescriptionLen {
		warnings = append(warnings, fmt.Sprintf("description shorter than %d characters", minDescriptionLen))
	}

	details := map[string]any{}
	if len(failures) > 0 {
		details["violations"] = failures
	}
	if len(warnings) > 0 {
		details["warnings"] = warnings
	}
	switch {
	case len(failures) > 0:
		return Result{Status: Failed, Message: strings.Join(failures, "; "), Details: details}, nil
	case len(warnings) > 0:
		return Result{Status: Warning, Message: strings.Join(warnings, "; "), Details: details}, nil
	}
	return Result{Status: Passed, Message: "Name follows conventions"}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func checkTransport(_ context.Context, a *Artifact, env Env) (Result, error) {
	tc := EnforceTransport(*a)
	details := map[string]any{"transport": tc.Transport}
	switch {
	case tc.Valid:
		return Result{Status: Passed, Message: tc.Message, Details: details}, nil
	case tc.Transport == "" && a.Type == Configuration && env.Strictness == Permissive:
		return Result{Status: Warning, Message: tc.Message + " (permitted for configuration in permissive mode)", Details: details}, nil
	}
	return Result{Status: Failed, Message: tc.Message, Details: details}, nil
}

func checkUnitTests(_ context.Context, a *Artifact, env Env) (Result, error) {
	if v, _ := a.meta("hasTests"); v == true {
		return Result{Status: Passed, Message: "Unit tests declared in metadata"}, nil
	}
	if hasTestClasses(a.Source) {
		return Result{Status: Passed, Message: "Test classes found"}, nil
	}
	return Result{Status: env.Strictness.escalate(), Message: "No unit tests found (FOR TESTING)"}, nil
}

func checkHumanApproval(_ context.Context, a *Artifact, env Env) (Result, error) {
	if env.Strictness == Permissive {
		return Result{Status: Passed, Message: "Auto-approved (permissive)"}, nil
	}
	if env.Approvals.IsApproved(a.Name) {
		return Result{Status: Passed, Message: "Human approval on record"}, nil
	}
	if env.Strictness == Moderate {
		return Result{Status: Warning, Message: "Not yet approved by a human reviewer"}, nil
	}
	req, ok := env.Approvals.PendingFor(a.Name)
	if !ok {
		var err error
		req, err = env.Approvals.RequestApproval(approval.Subject{
			Name:      a.Name,
			Type:      string(a.Type),
			Transport: a.Transport,
		}, GateRecords(env.Prior))
		if err != nil {
			return Result{}, err
		}
	}
	return Result{
		Status:  PendingReview,
		Message: fmt.Sprintf("Awaiting human approval (%s)", req.ID),
		Details: map[string]any{"approvalId": req.ID},
	}, nil
}
