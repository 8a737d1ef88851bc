package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/gate"
)

// WriteResult is the outcome of a gated write. Unapproved writes are not
// errors: Deployed is false and the report says why.
type WriteResult struct {
	Deployed   bool         `json:"deployed"`
	Activated  bool         `json:"activated"`
	Report     *gate.Report `json:"report"`
	ApprovalID string       `json:"approvalId,omitempty"`
	Deployment *Deployment  `json:"deployment,omitempty"`
	Activation *Activation  `json:"activation,omitempty"`
}

func configTools() []Tool {
	return []Tool{
		{
			Spec: newTool("config_deployArtifact",
				"Validate an artifact through the safety gates and, when approved, import it (and optionally activate it).",
				append(artifactOptions(),
					mcp.WithBoolean("activate", mcp.Description("Activate after import")))...),
			Handle: deployArtifact,
		},
		{
			Spec: newTool("config_activateObject",
				"Validate an existing repository object through the safety gates and, when approved, activate it.",
				mcp.WithString("objectType", mcp.Required(), mcp.Description("Object type"),
					mcp.Enum("program", "class", "function_module", "interface", "include")),
				mcp.WithString("objectName", mcp.Required(), mcp.Description("Object name")),
				mcp.WithString("transport", mcp.Required(), mcp.Description("Transport request")),
			),
			Handle: activateObject,
		},
	}
}

func deployArtifact(ctx context.Context, env *Env, args Args) (any, error) {
	gw, err := env.gateway()
	if err != nil {
		return nil, err
	}
	a, err := decodeArtifact(args)
	if err != nil {
		return nil, err
	}
	rep, err := env.Gates.ValidateArtifact(ctx, a)
	if err != nil {
		return nil, err
	}
	res := &WriteResult{Report: rep, ApprovalID: rep.ApprovalID}
	if !rep.Approved {
		return res, nil
	}
	if res.Deployment, err = gw.ImportArtifact(ctx, a); err != nil {
		return nil, err
	}
	res.Deployed = true
	if args.Bool("activate") {
		if res.Activation, err = gw.ActivateObject(ctx, string(a.Type), a.Name, a.Transport); err != nil {
			return nil, err
		}
		res.Activated = true
	}
	return res, nil
}

func activateObject(ctx context.Context, env *Env, args Args) (any, error) {
	gw, err := env.gateway()
	if err != nil {
		return nil, err
	}
	obj, err := gw.GetObjectSource(ctx, args.String("objectType"), args.Upper("objectName"))
	if err != nil {
		return nil, err
	}
	a := gate.Artifact{
		Name:      obj.Name,
		Type:      gate.ArtifactType(obj.Type),
		Source:    obj.Source,
		Transport: args.String("transport"),
		Metadata:  map[string]any{"description": obj.Description, "package": obj.Package},
	}
	rep, err := env.Gates.ValidateArtifact(ctx, a)
	if err != nil {
		return nil, err
	}
	res := &WriteResult{Report: rep, ApprovalID: rep.ApprovalID}
	if !rep.Approved {
		return res, nil
	}
	if res.Activation, err = gw.ActivateObject(ctx, obj.Type, obj.Name, a.Transport); err != nil {
		return nil, err
	}
	res.Activated = true
	return res, nil
}
