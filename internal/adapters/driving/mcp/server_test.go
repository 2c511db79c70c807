package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
	})

	t.Run("missing dialogue service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Summary: &mockSummaryService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDialogueService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil dialogue service returns error", func(t *testing.T) {
		ports := &Ports{Summary: &mockSummaryService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingDialogueService)
	})

	t.Run("nil summary service returns error", func(t *testing.T) {
		ports := &Ports{Dialogue: &mockDialogueService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSummaryService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Dialogue:  &mockDialogueService{},
			Summary:   &mockSummaryService{},
			Retrieval: &mockRetrievalService{},
			Reports:   &mockReportReader{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func listToolNames(t *testing.T, ports *Ports) []string {
	t.Helper()
	ctx := context.Background()

	server, err := NewServer(ports)
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer clientSession.Close()

	result, err := clientSession.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	return names
}

func TestServer_RegisteredTools(t *testing.T) {
	t.Run("without retrieval", func(t *testing.T) {
		names := listToolNames(t, validPorts())
		assert.ElementsMatch(t, []string{"start_session", "chat", "summarize"}, names)
	})

	t.Run("with retrieval", func(t *testing.T) {
		ports := validPorts()
		ports.Retrieval = &mockRetrievalService{}
		names := listToolNames(t, ports)
		assert.ElementsMatch(t, []string{"start_session", "chat", "summarize", "retrieve"}, names)
	})
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(validPorts())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
