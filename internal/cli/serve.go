package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/marcelocantos/erpkit/internal/mcpserver"
)

// RunServe answers MCP requests from stdin until EOF or cancellation.
func RunServe(ctx context.Context, app *App, stdin io.Reader, stdout, stderr io.Writer) int {
	s := mcpserver.New(app.Tools, app.Env,
		mcpserver.WithServerInfo(app.Config.Server.Name, app.Config.Server.Version),
		mcpserver.WithLogger(app.Logger))
	if err := s.Serve(ctx, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "erpkit serve: %v\n", err)
		return 1
	}
	return 0
}
