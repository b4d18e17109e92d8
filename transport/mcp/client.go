package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mazerooms/api"
	"github.com/wricardo/mazerooms/game/config"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Rooms",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Rooms - MCP Interface

Read-only view of a cooperative maze server. Players join rooms over a websocket
and move one shared avatar through a generated maze. These tools proxy the REST
status API; they cannot move players.

AVAILABLE TOOLS:
- server_status: Active rooms and total connected players
- list_rooms: Every room with its player count and whether it is full
- get_room: Details of one room (shared position, capacity, maze size)
- list_profiles: Maze profiles available to the server
- preview_maze: Generate a maze for a profile and draw it as text`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_status",
		Description: "Get the number of active rooms and connected players",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms with player counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to retrieve",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_profiles",
		Description: "List available maze profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListProfiles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_maze",
		Description: "Generate a maze with a profile and render it as text (# wall, . passage, S entry, E exit)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"profile": map[string]interface{}{
					"type":        "string",
					"description": "Profile ID, e.g. classic",
				},
				"seed": map[string]interface{}{
					"type":        "number",
					"description": "Optional seed for a reproducible maze",
				},
			},
			Required: []string{"profile"},
		},
	}, c.handlePreviewMaze)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleServerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status api.StatusResponse
	if err := c.apiCall(ctx, "GET", "/api/status", nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active rooms: %d\nConnected players: %d\n", status.ActiveRooms, status.TotalPlayers)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rooms api.RoomsResponse
	if err := c.apiCall(ctx, "GET", "/api/rooms", nil, &rooms); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRooms(rooms)), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID, _ := arguments(request)["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var detail api.RoomDetail
	if err := c.apiCall(ctx, "GET", "/api/rooms/"+url.PathEscape(roomID), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomDetail(detail)), nil
}

func (c *Client) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var profiles []config.ProfileInfo
	if err := c.apiCall(ctx, "GET", "/api/profiles", nil, &profiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Profiles:\n\n"
	for _, p := range profiles {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Players per room: %d, Generator: %s\n\n",
			p.Name, p.ProfileID, p.Description, p.Rows, p.Cols, p.MaxPlayers, p.Generator)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePreviewMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	profile, _ := args["profile"].(string)
	if profile == "" {
		return mcp.NewToolResultError("profile is required"), nil
	}

	path := "/api/profiles/" + url.PathEscape(profile) + "/preview"
	if seed, ok := args["seed"].(float64); ok && seed >= 0 {
		path += fmt.Sprintf("?seed=%d", uint64(seed))
	}

	var preview api.PreviewResponse
	if err := c.apiCall(ctx, "GET", path, nil, &preview); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPreview(preview)), nil
}

func formatRooms(rooms api.RoomsResponse) string {
	if len(rooms.Rooms) == 0 {
		return "No active rooms\n"
	}

	ids := make([]string, 0, len(rooms.Rooms))
	for id := range rooms.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "Active Rooms (%d):\n\n", len(ids))
	for _, id := range ids {
		r := rooms.Rooms[id]
		state := "open"
		if r.IsFull {
			state = "full"
		}
		fmt.Fprintf(&b, "- %s: %d players (%s)\n", id, r.PlayerCount, state)
	}
	return b.String()
}

func formatRoomDetail(d api.RoomDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room: %s\n", d.ID)
	fmt.Fprintf(&b, "Players: %d/%d", d.ParticipantCount, d.MaxPlayers)
	if d.IsFull {
		b.WriteString(" (full)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Shared position: (%d,%d)\n", d.Position.X, d.Position.Y)
	fmt.Fprintf(&b, "Maze: %dx%d, %d obstacles, exit at (%d,%d)\n", d.Rows, d.Cols, d.Obstacles, d.Exit.X, d.Exit.Y)
	if d.Degenerate {
		b.WriteString("Note: maze generation fell back to an open grid\n")
	}
	return b.String()
}

func formatPreview(p api.PreviewResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile: %s (%dx%d)\n", p.Profile, p.Rows, p.Cols)
	fmt.Fprintf(&b, "Obstacles: %d, attempts: %d", p.Obstacles, p.Attempts)
	if p.Degenerate {
		b.WriteString(", degenerate open grid")
	}
	b.WriteString("\n")
	if p.ShortestPath >= 0 {
		fmt.Fprintf(&b, "Shortest path entry to exit: %d steps\n", p.ShortestPath)
	}
	b.WriteString("\n")
	b.WriteString(p.Render)
	return b.String()
}
