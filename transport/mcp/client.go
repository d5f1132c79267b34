package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/royal-game-of-ur/game/service"
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
		"Royal Game of Ur",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Royal Game of Ur - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Race all 7 of your tokens along the track and off the board before your
opponent does. Dice rolls are the sum of four coin flips (0-4).

AVAILABLE TOOLS:
- list_players: Players currently connected to the lobby
- list_challenges: Pending game challenges
- list_games: All active games
- get_game: Full state of one game, including the board and message log
- roll: Roll the dice in a game on behalf of a player
- move: Move a token in a game on behalf of a player
- game_instructions: Get comprehensive game rules

The roll and move tools act as a specific player: pass the playerId of
the side you are playing. The server enforces turn order and legality,
so illegal requests come back as errors rather than corrupting the game.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List players currently connected to the lobby",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPlayers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_challenges",
		Description: "List pending game challenges",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListChallenges)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all active games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the full state of a game, including the board and message log",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameId": map[string]interface{}{
					"type":        "string",
					"description": "Game ID to retrieve",
				},
			},
			Required: []string{"gameId"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll",
		Description: "Roll the dice in a game. Only legal when it is the player's turn and they have not rolled yet.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameId": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"playerId": map[string]interface{}{
					"type":        "integer",
					"description": "Identity of the player rolling",
				},
			},
			Required: []string{"gameId", "playerId"},
		},
	}, c.handleRoll)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a token. track is the origin cell (0 moves a token in from the waiting pool), lane is 'player' for the private lanes or 'middle' for the shared lane.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameId": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
				"playerId": map[string]interface{}{
					"type":        "integer",
					"description": "Identity of the player moving",
				},
				"track": map[string]interface{}{
					"type":        "integer",
					"description": "Origin cell index, 0-14. 0 is the waiting pool.",
				},
				"lane": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"player", "middle"},
					"description": "Lane the origin cell belongs to. Cells 1-4 and 13-14 are 'player', cells 5-12 are 'middle'. The pool (0) is 'player'.",
				},
			},
			Required: []string{"gameId", "playerId", "track", "lane"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

func (c *Client) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Players []service.PlayerInfo `json:"players"`
	}

	err := c.apiCall("GET", "/api/players", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Online Players (%d):\n\n", response.Count)
	for _, p := range response.Players {
		result += fmt.Sprintf("- %s (id %d)\n", p.Name, p.ID)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListChallenges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count      int                 `json:"count"`
		Challenges []service.Challenge `json:"challenges"`
	}

	err := c.apiCall("GET", "/api/challenges", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Pending Challenges (%d):\n\n", response.Count)
	for _, ch := range response.Challenges {
		result += fmt.Sprintf("- %s: %s (id %d) challenged %s (id %d)\n",
			ch.ID, ch.From.Name, ch.From.ID, ch.To.Name, ch.To.ID)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                 `json:"count"`
		Games []*service.GameView `json:"games"`
	}

	err := c.apiCall("GET", "/api/games", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		result += fmt.Sprintf("- %s: %s vs %s (turn %d, %s)\n",
			g.ID, g.Sides[0].Name, g.Sides[1].Name, g.Turn, g.Phase)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["gameId"].(string)

	var view service.GameView
	err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", gameID), nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleRoll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["gameId"].(string)
	playerID, _ := args["playerId"].(float64)

	body := map[string]interface{}{
		"playerId": int64(playerID),
	}

	var view service.GameView
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/roll", gameID), body, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["gameId"].(string)
	playerID, _ := args["playerId"].(float64)
	track, _ := args["track"].(float64)
	lane, _ := args["lane"].(string)

	body := map[string]interface{}{
		"playerId": int64(playerID),
		"track":    int(track),
		"lane":     lane,
	}

	var view service.GameView
	err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/move", gameID), body, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Royal Game of Ur - Complete Rules

GAME OBJECTIVE:
Be the first to race all 7 of your tokens along the track and off the
board. Tokens enter from your waiting pool, travel cells 1 through 14,
and leave the board by an exact move onto cell 15.

THE TRACK:
- Cells 1-4 and 13-14 are private: each side has its own copy, and the
  two sides can never meet there. These cells are in the "player" lane.
- Cells 5-12 are shared: both sides travel the same eight cells and can
  capture each other there. These cells are in the "middle" lane.
- Cell 0 is the waiting pool (off-board) and cell 15 is the exit; both
  are virtual and never occupied.

DICE:
A roll is the sum of four coin flips, so it ranges 0 to 4. The
distribution is binomial: 0 and 4 are rare (1/16 each), 2 is the most
common (6/16).
- Rolling 0 forfeits the turn.
- Rolling a number with no legal move also forfeits the turn; the
  server skips it automatically.

MOVING:
On your turn, roll first, then pick the origin cell of the token to
move. The token advances exactly the rolled amount.
- From the pool (origin 0), a roll of N enters a token on cell N.
- You cannot land on a cell already holding your own token.
- Landing on an opponent token in the shared lane captures it: the
  token goes back to the opponent's waiting pool.
- Cell 8 is protected: no one may land there while it is occupied by
  either side, so a token on cell 8 can never be captured.
- Exiting requires an exact roll onto cell 15; overshooting is illegal.

EXTRA TURNS:
Landing on cell 4, 8, or 14 grants an immediate extra turn: roll again
before your opponent plays.

STARTING:
Before the first turn both players roll; the higher roller goes first.
Ties are rerolled.

PLAYING VIA THIS INTERFACE:
1. Use list_games (or get_game) to find your game and check the phase.
2. When the phase is "awaiting-roll" and it is your side's turn, call
   roll with your playerId.
3. When the phase is "awaiting-move", inspect the board and call move
   with the origin cell and its lane ("player" for 0-4 and 13-14,
   "middle" for 5-12).
4. The message log in get_game narrates everything that has happened,
   including captures, forfeited turns, and extra turns.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// formatGameView renders a game as text: header, per-side summary, the
// board, and the most recent log lines.
func formatGameView(view *service.GameView) string {
	var b strings.Builder

	roll := "-"
	if view.CurrentRoll != nil {
		roll = fmt.Sprintf("%d", *view.CurrentRoll)
	}
	b.WriteString(fmt.Sprintf("Game %s | Turn %d | Phase: %s | Roll: %s\n\n",
		view.ID, view.Turn, view.Phase, roll))

	for _, side := range view.Sides {
		marker := " "
		if side.Ordinal == view.CurrentSide {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s Side %d: %s (id %d) waiting=%d done=%d\n",
			marker, side.Ordinal, side.Name, side.Player, side.TokensWaiting, side.TokensDone))
	}

	b.WriteString("\nBoard (1 = side 1 token, 2 = side 2 token, cells 5-12 shared):\n")
	b.WriteString(formatTrackRow(view, 1))
	b.WriteString(formatTrackRow(view, 2))

	if n := len(view.Messages); n > 0 {
		b.WriteString("\nRecent log:\n")
		start := n - 10
		if start < 0 {
			start = 0
		}
		for _, entry := range view.Messages[start:] {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", entry.Turn, entry.Text))
		}
	}

	return b.String()
}

// formatTrackRow renders one side's path through the track as a single
// line of cells 1..14.
func formatTrackRow(view *service.GameView, ordinal int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  side %d: ", ordinal))
	for cell := 1; cell <= 14; cell++ {
		ch := "."
		if view.Track[cell].Has(ordinal) {
			ch = fmt.Sprintf("%d", ordinal)
		}
		if cell >= 5 && cell <= 12 {
			b.WriteString(fmt.Sprintf("{%s}", ch))
		} else {
			b.WriteString(fmt.Sprintf("[%s]", ch))
		}
	}
	b.WriteString("\n")
	return b.String()
}
