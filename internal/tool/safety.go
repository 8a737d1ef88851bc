package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/approval"
	"github.com/marcelocantos/erpkit/internal/gate"
)

func artifactTypes() []string {
	out := make([]string, len(gate.ArtifactTypes))
	for i, t := range gate.ArtifactTypes {
		out[i] = string(t)
	}
	return out
}

// artifactOptions declares the artifact fields shared by the safety and
// config tools.
func artifactOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("name", mcp.Required(), mcp.Description("Artifact name, e.g. Z_MATERIAL_REPORT")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Artifact type"), mcp.Enum(artifactTypes()...)),
		mcp.WithString("source", mcp.Description("ABAP source")),
		mcp.WithString("transport", mcp.Description("Transport request, e.g. DEVK900123")),
		mcp.WithObject("metadata", mcp.Description("Free-form metadata such as description, package, hasTests")),
	}
}

func newTool(name, desc string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(desc)}, opts...)...)
}

func decodeArtifact(args Args) (gate.Artifact, error) {
	var a gate.Artifact
	err := args.Decode(&a)
	return a, err
}

func safetyTools() []Tool {
	transportArg := mcp.WithString("transport", mcp.Required(), mcp.Description("Transport request, e.g. DEVK900123"))
	return []Tool{
		{
			Spec: newTool("safety_validateArtifact",
				"Run an artifact through the safety gates and return the gate report.",
				artifactOptions()...),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				a, err := decodeArtifact(args)
				if err != nil {
					return nil, err
				}
				return env.Gates.ValidateArtifact(ctx, a)
			},
		},
		{
			Spec: newTool("safety_requestApproval",
				"Validate an artifact and file a human approval request with the gate results.",
				artifactOptions()...),
			Handle: requestApproval,
		},
		{
			Spec: newTool("safety_approve",
				"Approve a pending approval request.",
				mcp.WithString("approvalId", mcp.Required(), mcp.Description("Approval id, e.g. APR-000001")),
				mcp.WithString("approver", mcp.Required(), mcp.Description("Name of the approver")),
				mcp.WithString("comments", mcp.Description("Optional comments")),
			),
			Handle: func(_ context.Context, env *Env, args Args) (any, error) {
				return env.Gates.Approvals().Approve(args.String("approvalId"), args.String("approver"), args.String("comments"))
			},
		},
		{
			Spec: newTool("safety_reject",
				"Reject a pending approval request.",
				mcp.WithString("approvalId", mcp.Required(), mcp.Description("Approval id")),
				mcp.WithString("approver", mcp.Required(), mcp.Description("Name of the approver")),
				mcp.WithString("reason", mcp.Required(), mcp.Description("Why the artifact is rejected")),
			),
			Handle: func(_ context.Context, env *Env, args Args) (any, error) {
				return env.Gates.Approvals().Reject(args.String("approvalId"), args.String("approver"), args.String("reason"))
			},
		},
		{
			Spec: newTool("safety_listPending", "List pending approval requests."),
			Handle: func(_ context.Context, env *Env, _ Args) (any, error) {
				p := env.Gates.Approvals().Pending()
				if p == nil {
					p = []approval.Request{}
				}
				return map[string]any{"pending": p, "count": len(p)}, nil
			},
		},
		{
			Spec: newTool("safety_getAuditLog",
				"Return the most recent audit entries and whether the hash chain verifies.",
				mcp.WithNumber("limit", mcp.Description("Number of entries (default 50)"), mcp.Min(1)),
			),
			Handle: func(_ context.Context, env *Env, args Args) (any, error) {
				log := env.Gates.AuditLog()
				chainErr := ""
				if err := log.Verify(); err != nil {
					chainErr = err.Error()
				}
				return map[string]any{
					"entries":    log.Tail(args.Int("limit", 50)),
					"total":      log.Len(),
					"chainValid": chainErr == "",
					"chainError": chainErr,
				}, nil
			},
		},
		{
			Spec: newTool("safety_listGates", "List the registered safety gates in run order."),
			Handle: func(_ context.Context, env *Env, _ Args) (any, error) {
				return map[string]any{"gates": env.Gates.Gates(), "strictness": env.Gates.Strictness()}, nil
			},
		},
		{
			Spec: newTool("safety_checkTransport", "Check a transport request number.", transportArg),
			Handle: func(_ context.Context, _ *Env, args Args) (any, error) {
				return gate.EnforceTransport(gate.Artifact{Transport: args.String("transport")}), nil
			},
		},
		{
			Spec: newTool("safety_transportChain", "Return the promotion path DEV -> QAS -> PRD of a transport.", transportArg),
			Handle: func(_ context.Context, _ *Env, args Args) (any, error) {
				return gate.ValidateTransportChain(args.String("transport")), nil
			},
		},
	}
}

func requestApproval(ctx context.Context, env *Env, args Args) (any, error) {
	a, err := decodeArtifact(args)
	if err != nil {
		return nil, err
	}
	rep, err := env.Gates.ValidateArtifact(ctx, a)
	if err != nil {
		return nil, err
	}
	store := env.Gates.Approvals()
	var req approval.Request
	if rep.ApprovalID != "" {
		req, err = store.Get(rep.ApprovalID)
	} else if pending, ok := store.PendingFor(a.Name); ok {
		req = pending
	} else {
		req, err = store.RequestApproval(approval.Subject{Name: a.Name, Type: string(a.Type), Transport: a.Transport},
			gate.GateRecords(rep.GateResults))
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"request": req, "report": rep}, nil
}
