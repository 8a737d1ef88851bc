package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marcelocantos/erpkit/internal/tool"
)

const (
	uriScheme     = "sap://"
	mimeJSON      = "application/json"
	mimePlainText = "text/plain"
)

const (
	uriSystemInfo     = uriScheme + "system/info"
	uriObjectSource   = uriScheme + "objects/{type}/{name}"
	uriTableStructure = uriScheme + "tables/{name}/structure"
	uriTableData      = uriScheme + "tables/{name}/data"
)

func resourceList() []mcp.Resource {
	return []mcp.Resource{
		mcp.NewResource(uriSystemInfo, "SAP system information",
			mcp.WithResourceDescription("System id, client, release and database of the SAP system"),
			mcp.WithMIMEType(mimeJSON)),
		mcp.NewResource(uriObjectSource, "ABAP object source",
			mcp.WithResourceDescription("Source code of a repository object"),
			mcp.WithMIMEType(mimePlainText)),
		mcp.NewResource(uriTableStructure, "Table structure",
			mcp.WithResourceDescription("Data-dictionary fields of a table"),
			mcp.WithMIMEType(mimeJSON)),
		mcp.NewResource(uriTableData, "Table data",
			mcp.WithResourceDescription("First rows of a table"),
			mcp.WithMIMEType(mimeJSON)),
	}
}

func resourceTemplates() []mcp.ResourceTemplate {
	return []mcp.ResourceTemplate{
		mcp.NewResourceTemplate(uriObjectSource, "ABAP object source",
			mcp.WithTemplateDescription("Source code of a repository object"),
			mcp.WithTemplateMIMEType(mimePlainText)),
		mcp.NewResourceTemplate(uriTableStructure, "Table structure",
			mcp.WithTemplateDescription("Data-dictionary fields of a table"),
			mcp.WithTemplateMIMEType(mimeJSON)),
		mcp.NewResourceTemplate(uriTableData, "Table data",
			mcp.WithTemplateDescription("First rows of a table"),
			mcp.WithTemplateMIMEType(mimeJSON)),
	}
}

// resourceCall is the tool call a resource URI resolves to.
type resourceCall struct {
	tool string
	args map[string]any
	mime string
}

// parseResourceURI matches uri against the resource templates.
//
//	sap://system/info               → getSystemInfo
//	sap://objects/program/ZREPORT   → getObjectSource
//	sap://tables/MARA/structure     → getTableStructure
//	sap://tables/MARA/data          → readTable
func parseResourceURI(uri string) (resourceCall, error) {
	path, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return resourceCall{}, fmt.Errorf("unsupported URI scheme: %s", uri)
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 2 && parts[0] == "system" && parts[1] == "info":
		return resourceCall{tool: "getSystemInfo", mime: mimeJSON}, nil
	case len(parts) == 3 && parts[0] == "objects" && parts[1] != "" && parts[2] != "":
		return resourceCall{
			tool: "getObjectSource",
			args: map[string]any{"objectType": parts[1], "objectName": parts[2]},
			mime: mimePlainText,
		}, nil
	case len(parts) == 3 && parts[0] == "tables" && parts[1] != "" && parts[2] == "structure":
		return resourceCall{tool: "getTableStructure", args: map[string]any{"tableName": parts[1]}, mime: mimeJSON}, nil
	case len(parts) == 3 && parts[0] == "tables" && parts[1] != "" && parts[2] == "data":
		return resourceCall{tool: "readTable", args: map[string]any{"tableName": parts[1]}, mime: mimeJSON}, nil
	}
	return resourceCall{}, fmt.Errorf("unknown resource: %s", uri)
}

func (s *Server) readResource(ctx context.Context, raw json.RawMessage) (any, error) {
	var p resourcesReadParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, invalidParams("params.uri is required")
	}
	rc, err := parseResourceURI(p.URI)
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	v, err := s.tools.Call(ctx, s.env, rc.tool, rc.args)
	if err != nil {
		return nil, err
	}

	var text string
	if src, ok := v.(*tool.ObjectSource); ok && rc.mime == mimePlainText {
		text = src.Source
	} else {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode resource: %w", err)
		}
		text = string(data)
	}
	return mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			mcp.TextResourceContents{URI: p.URI, MIMEType: rc.mime, Text: text},
		},
	}, nil
}
