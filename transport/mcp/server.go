// Package mcp exposes a read-only MCP tool surface over the session
// registry, so the server can be inspected from MCP clients both over the
// /mcp HTTP endpoint and in stdio mode.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"seabattle/game/session"
)

// Server wraps an MCP tool server around the session manager. All tools are
// observers; gameplay mutations happen only over the websocket protocol.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(sessions *session.Manager) *Server {
	s := &Server{sessions: sessions}

	s.mcpServer = server.NewMCPServer(
		"Sea Battle Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sea Battle match server - MCP interface

Read-only observer over the live match registry. Matches are played by two
websocket clients; these tools let you inspect rooms without joining them.

AVAILABLE TOOLS:
- list_sessions: list all live rooms with state and turn
- get_session: details of one room by its code
- server_stats: session counts by state`),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying server for HTTP or stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all live game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a session by room code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Room code of the session",
				},
			},
			Required: []string{"room_code"},
		},
	}, s.handleGetSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Session counts grouped by game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleServerStats)
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	live := s.sessions.List()

	result := fmt.Sprintf("Live sessions (%d):\n\n", len(live))
	for _, sess := range live {
		sum := sess.Snapshot()
		result += fmt.Sprintf("- %s (state: %s, turn: player%d, last activity: %s)\n",
			sum.RoomCode, sum.State, sum.CurrentTurn, sum.LastActivity.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)

	sess, ok := s.sessions.GetSession(roomCode)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("session %q not found", roomCode)), nil
	}

	sum := sess.Snapshot()
	result := fmt.Sprintf(`Session %s
State: %s
Current turn: player%d
Player 1: connected=%t, ships placed=%t
Player 2: joined=%t, connected=%t, ships placed=%t
Created: %s
Last activity: %s`,
		sum.RoomCode, sum.State, sum.CurrentTurn,
		sum.Player1Connected, sum.Player1Placed,
		sum.Player2Joined, sum.Player2Connected, sum.Player2Placed,
		sum.CreatedAt.Format("15:04:05"), sum.LastActivity.Format("15:04:05"))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	byState := make(map[string]int)
	for _, sess := range s.sessions.List() {
		byState[sess.Snapshot().State]++
	}

	result := fmt.Sprintf("Total sessions: %d\n", s.sessions.Count())
	for _, state := range []string{"WAITING_FOR_PLAYER", "PLACING_SHIPS", "IN_GAME", "FINISHED"} {
		if n, ok := byState[state]; ok {
			result += fmt.Sprintf("  %s: %d\n", state, n)
		}
	}
	return mcp.NewToolResultText(result), nil
}
