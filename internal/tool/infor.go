package tool

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/canonical"
	"github.com/marcelocantos/erpkit/internal/mapping"
)

var inforSystems = []string{mapping.InforCSI, mapping.InforLawson, mapping.InforLN, mapping.InforM3}

func inforSystem(args Args) (string, error) {
	s := args.Upper("system")
	if !slices.Contains(inforSystems, s) {
		return "", fmt.Errorf("%w: system %q (want one of %s)", ErrInvalidArguments, s, strings.Join(inforSystems, ", "))
	}
	return s, nil
}

func inforTools() []Tool {
	systemArg := mcp.WithString("system", mcp.Required(),
		mcp.Description("Infor product, case-insensitive: "+strings.Join(inforSystems, ", ")))
	return []Tool{
		{
			Spec: mcp.NewTool("infor_queryEntities",
				mcp.WithDescription("Query Infor records for a canonical entity type, optionally mapped to canonical form."),
				systemArg,
				mcp.WithString("entityType", mcp.Required(), mcp.Description("Canonical entity type, e.g. Item")),
				mcp.WithObject("filter", mcp.Description("Source field equality filter")),
				mcp.WithBoolean("canonical", mcp.Description("Map records to canonical entities and validate them")),
			),
			Handle: queryEntities,
		},
		{
			Spec: mcp.NewTool("infor_getSystemInfo",
				mcp.WithDescription("Return Infor system information."),
				systemArg,
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				s, err := inforSystem(args)
				if err != nil {
					return nil, err
				}
				a, err := env.Adapters.Get(ctx, s)
				if err != nil {
					return nil, err
				}
				return a.SystemInfo(ctx)
			},
		},
		{
			Spec: mcp.NewTool("infor_readTable",
				mcp.WithDescription("Read rows of an Infor table."),
				systemArg,
				mcp.WithString("tableName", mcp.Required(), mcp.Description("Table name, e.g. tcibd001")),
				mcp.WithArray("fields", mcp.Description("Fields to return; all when empty"), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithString("where", mcp.Description("Conjunction of FIELD op 'value' terms joined by AND")),
				mcp.WithNumber("maxRows", mcp.Description("Row limit (default 100)"), mcp.Min(1), mcp.Max(10000)),
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				s, err := inforSystem(args)
				if err != nil {
					return nil, err
				}
				return readTable(ctx, env, s, args)
			},
		},
	}
}

// MappedRecord is one canonical entity with its validation outcome.
type MappedRecord struct {
	Entity     map[string]any             `json:"entity"`
	Validation canonical.ValidationResult `json:"validation"`
}

func queryEntities(ctx context.Context, env *Env, args Args) (any, error) {
	s, err := inforSystem(args)
	if err != nil {
		return nil, err
	}
	et := canonical.EntityType(args.String("entityType"))
	if _, err := canonical.SchemaFor(et); err != nil {
		return nil, err
	}
	a, err := env.Adapters.Get(ctx, s)
	if err != nil {
		return nil, err
	}
	recs, err := a.QueryEntities(ctx, et, args.Object("filter"))
	if err != nil {
		return nil, err
	}
	out := map[string]any{"system": s, "entityType": et, "count": len(recs)}
	if !args.Bool("canonical") {
		out["records"] = recs
		return out, nil
	}
	mapped := make([]MappedRecord, 0, len(recs))
	for _, r := range recs {
		e, err := env.Mapper.Map(string(et), s, r)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, MappedRecord{Entity: e.ToJSON(), Validation: e.Validate()})
	}
	out["records"] = mapped
	return out, nil
}
