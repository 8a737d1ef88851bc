package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

func canonicalTools() []Tool {
	return []Tool{
		{
			Spec: mcp.NewTool("canonical_listEntities",
				mcp.WithDescription("List canonical entity types with their required fields and mapped source systems."),
			),
			Handle: listEntities,
		},
		{
			Spec: mcp.NewTool("canonical_getSchema",
				mcp.WithDescription("Return the field definitions of a canonical entity type."),
				mcp.WithString("entityType", mcp.Required(), mcp.Description("Entity type, e.g. SalesOrder")),
			),
			Handle: func(_ context.Context, _ *Env, args Args) (any, error) {
				et := canonical.EntityType(args.String("entityType"))
				s, err := canonical.SchemaFor(et)
				if err != nil {
					return nil, err
				}
				return map[string]any{"entityType": et, "schema": s}, nil
			},
		},
		{
			Spec: mcp.NewTool("canonical_mapRecord",
				mcp.WithDescription("Map a source-system record to a canonical entity and validate it."),
				mcp.WithString("sourceSystem", mcp.Required(), mcp.Description("SAP, INFOR_LN, INFOR_M3, INFOR_CSI or INFOR_LAWSON")),
				mcp.WithString("entityType", mcp.Required(), mcp.Description("Canonical entity type")),
				mcp.WithObject("record", mcp.Required(), mcp.Description("Source record keyed by source field name")),
			),
			Handle: func(_ context.Context, env *Env, args Args) (any, error) {
				e, err := env.Mapper.Map(args.String("entityType"), args.Upper("sourceSystem"), args.Object("record"))
				if err != nil {
					return nil, err
				}
				return MappedRecord{Entity: e.ToJSON(), Validation: e.Validate()}, nil
			},
		},
		{
			Spec: mcp.NewTool("canonical_validate",
				mcp.WithDescription("Validate canonical entity data against its schema."),
				mcp.WithString("entityType", mcp.Required(), mcp.Description("Canonical entity type")),
				mcp.WithObject("data", mcp.Required(), mcp.Description("Entity fields")),
			),
			Handle: func(_ context.Context, _ *Env, args Args) (any, error) {
				e, err := canonical.New(args.String("entityType"))
				if err != nil {
					return nil, err
				}
				for k, v := range args.Object("data") {
					e.Set(k, v)
				}
				return e.Validate(), nil
			},
		},
	}
}

// EntitySummary describes one entity type in canonical_listEntities.
type EntitySummary struct {
	EntityType     canonical.EntityType `json:"entityType"`
	RequiredFields []string             `json:"requiredFields"`
	FieldCount     int                  `json:"fieldCount"`
	SourceSystems  []string             `json:"sourceSystems"`
}

func listEntities(_ context.Context, env *Env, _ Args) (any, error) {
	bySystem := make(map[canonical.EntityType][]string)
	for _, sys := range env.Tables.Supported() {
		types, err := env.Tables.Entities(sys)
		if err != nil {
			return nil, err
		}
		for _, t := range types {
			bySystem[t] = append(bySystem[t], sys)
		}
	}
	var out []EntitySummary
	for _, t := range canonical.Types() {
		s, _ := canonical.SchemaFor(t)
		systems := bySystem[t]
		if systems == nil {
			systems = []string{}
		}
		out = append(out, EntitySummary{
			EntityType:     t,
			RequiredFields: s.RequiredFields,
			FieldCount:     len(s.FieldDefinitions),
			SourceSystems:  systems,
		})
	}
	return map[string]any{"entities": out, "count": len(out)}, nil
}
