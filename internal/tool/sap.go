package tool

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/adapter"
)

var tableName = regexp.MustCompile(`^[A-Za-z0-9_/$]{1,30}$`)

func checkTableName(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("%w: table name %q", ErrInvalidArguments, name)
	}
	return nil
}

func sapTools() []Tool {
	return []Tool{
		{
			Spec: mcp.NewTool("getSystemInfo",
				mcp.WithDescription("Return SAP system information: system id, client, release, database."),
			),
			Handle: func(ctx context.Context, env *Env, _ Args) (any, error) {
				a, err := env.Adapters.Get(ctx, "SAP")
				if err != nil {
					return nil, err
				}
				return a.SystemInfo(ctx)
			},
		},
		{
			Spec: mcp.NewTool("getTableStructure",
				mcp.WithDescription("Return the data-dictionary fields (DD03L) of an SAP table."),
				mcp.WithString("tableName", mcp.Required(), mcp.Description("Table name, e.g. MARA")),
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				return tableStructure(ctx, env, args.Upper("tableName"))
			},
		},
		{
			Spec: mcp.NewTool("readTable",
				mcp.WithDescription("Read rows of an SAP table (RFC_READ_TABLE semantics)."),
				mcp.WithString("tableName", mcp.Required(), mcp.Description("Table name")),
				mcp.WithArray("fields", mcp.Description("Fields to return; all when empty"), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithString("where", mcp.Description("Conjunction of FIELD op 'value' terms joined by AND")),
				mcp.WithNumber("maxRows", mcp.Description("Row limit (default 100)"), mcp.Min(1), mcp.Max(10000)),
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				return readTable(ctx, env, "SAP", args)
			},
		},
		{
			Spec: mcp.NewTool("searchObjects",
				mcp.WithDescription("Search ABAP repository objects by name or description; * is a wildcard."),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search term, e.g. Z*MATERIAL*")),
				mcp.WithString("objectType", mcp.Description("Restrict to one object type"),
					mcp.Enum("program", "class", "function_module", "interface", "include")),
				mcp.WithNumber("maxResults", mcp.Description("Result limit (default 50)"), mcp.Min(1)),
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				gw, err := env.gateway()
				if err != nil {
					return nil, err
				}
				objs, err := gw.SearchObjects(ctx, args.String("query"), args.String("objectType"), args.Int("maxResults", 50))
				if err != nil {
					return nil, err
				}
				return map[string]any{"objects": objs, "count": len(objs)}, nil
			},
		},
		{
			Spec: mcp.NewTool("getObjectSource",
				mcp.WithDescription("Return the source of an ABAP repository object."),
				mcp.WithString("objectType", mcp.Required(), mcp.Description("Object type"),
					mcp.Enum("program", "class", "function_module", "interface", "include")),
				mcp.WithString("objectName", mcp.Required(), mcp.Description("Object name")),
			),
			Handle: func(ctx context.Context, env *Env, args Args) (any, error) {
				gw, err := env.gateway()
				if err != nil {
					return nil, err
				}
				return gw.GetObjectSource(ctx, args.String("objectType"), args.Upper("objectName"))
			},
		},
		{
			Spec: mcp.NewTool("healthCheck",
				mcp.WithDescription("Check connectivity of one source system, or all when system is omitted."),
				mcp.WithString("system", mcp.Description("Source system, e.g. SAP or INFOR_LN")),
			),
			Handle: healthCheck,
		},
	}
}

// Field is one column of a table structure.
type Field struct {
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Key         bool   `json:"key"`
	Type        string `json:"type"`
	Length      int    `json:"length"`
	Decimals    int    `json:"decimals"`
	Description string `json:"description"`
}

// Structure is the result of getTableStructure.
type Structure struct {
	Table      string   `json:"table"`
	Fields     []Field  `json:"fields"`
	FieldCount int      `json:"fieldCount"`
	KeyFields  []string `json:"keyFields"`
}

func tableStructure(ctx context.Context, env *Env, table string) (*Structure, error) {
	if err := checkTableName(table); err != nil {
		return nil, err
	}
	a, err := env.Adapters.Get(ctx, "SAP")
	if err != nil {
		return nil, err
	}
	res, err := a.ReadTable(ctx, "DD03L", adapter.ReadOptions{
		Where:   fmt.Sprintf("TABNAME = '%s'", table),
		MaxRows: 1000,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("table %s not found in data dictionary", table)
	}
	s := &Structure{Table: table, KeyFields: []string{}}
	for _, r := range res.Rows {
		f := Field{
			Name:        fmt.Sprint(r["FIELDNAME"]),
			Position:    toInt(r["POSITION"]),
			Key:         strings.TrimSpace(fmt.Sprint(r["KEYFLAG"])) == "X",
			Type:        fmt.Sprint(r["DATATYPE"]),
			Length:      toInt(r["LENG"]),
			Decimals:    toInt(r["DECIMALS"]),
			Description: fmt.Sprint(r["DDTEXT"]),
		}
		s.Fields = append(s.Fields, f)
	}
	sort.SliceStable(s.Fields, func(i, j int) bool { return s.Fields[i].Position < s.Fields[j].Position })
	for _, f := range s.Fields {
		if f.Key {
			s.KeyFields = append(s.KeyFields, f.Name)
		}
	}
	s.FieldCount = len(s.Fields)
	return s, nil
}

func toInt(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

func readTable(ctx context.Context, env *Env, system string, args Args) (*adapter.TableResult, error) {
	table := args.Upper("tableName")
	if err := checkTableName(table); err != nil {
		return nil, err
	}
	a, err := env.Adapters.Get(ctx, system)
	if err != nil {
		return nil, err
	}
	return a.ReadTable(ctx, table, adapter.ReadOptions{
		Fields:  args.Strings("fields"),
		Where:   args.String("where"),
		MaxRows: args.Int("maxRows", adapter.DefaultMaxRows),
	})
}

func healthCheck(ctx context.Context, env *Env, args Args) (any, error) {
	systems := env.Adapters.Systems()
	if s := args.Upper("system"); s != "" {
		systems = []string{s}
	}
	results := make([]*adapter.Health, 0, len(systems))
	healthy := true
	for _, s := range systems {
		a, err := env.Adapters.Get(ctx, s)
		if err != nil {
			results = append(results, &adapter.Health{System: s, Mode: env.Mode, Message: err.Error()})
			healthy = false
			continue
		}
		h, err := a.HealthCheck(ctx)
		if err != nil {
			return nil, err
		}
		healthy = healthy && h.Healthy
		results = append(results, h)
	}
	return map[string]any{"healthy": healthy, "systems": results}, nil
}
