// Package testserver runs the full taskdesk stack behind an HTTP test server.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/domain/client"
	"github.com/ganot/taskdesk/internal/domain/project"
	"github.com/ganot/taskdesk/internal/domain/quicktask"
	"github.com/ganot/taskdesk/internal/mcp"
	"github.com/ganot/taskdesk/internal/sqlite"
	"github.com/ganot/taskdesk/internal/view"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	KV         *sqlite.KVStore
	Token      string
	Projects   *project.Store
	QuickTasks *quicktask.Store
	Clients    *client.Store
}

// New starts a server that requires token as a bearer token. Stores write
// synchronously so tests can inspect storage right after a call.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	kv := sqlite.NewKVStore(db, 0)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)

	projects := project.NewStore(kv, project.Options{Location: time.UTC, Activity: activitySvc}, nil)
	quickTasks := quicktask.NewStore(kv, quicktask.Options{Activity: activitySvc}, nil)
	clients := client.NewStore(kv, client.Options{Activity: activitySvc}, nil)
	ctx := context.Background()
	projects.Load(ctx)
	quickTasks.Load(ctx)
	clients.Load(ctx)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:   projects,
			Views:      view.NewProjector(projects, time.Minute, nil),
			QuickTasks: quickTasks,
			Clients:    clients,
			Activity:   activitySvc,
			ExportDir:  t.TempDir(),
		},
		AuthToken:     token,
		TransportMode: "http",
	})

	handler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)
	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	server := httptest.NewServer(mux)

	ts := &TestServer{
		Server:     server,
		DB:         db,
		KV:         kv,
		Token:      token,
		Projects:   projects,
		QuickTasks: quickTasks,
		Clients:    clients,
	}

	t.Cleanup(func() {
		server.Close()
		projects.Close(ctx)
		quickTasks.Close(ctx)
		clients.Close(ctx)
		_ = db.Close()
	})

	return ts
}

// Connect opens an MCP client session that sends token on every request.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: token}},
	}
	c := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := c.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

type bearerTransport struct {
	token string
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}
