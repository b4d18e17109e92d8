package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/wricardo/mazerooms/game/maze"
)

// Message type tags
const (
	TypeJoin           = "JOIN"
	TypeMove           = "MOVE"
	TypePositionUpdate = "POSITION_UPDATE"
	TypeLeave          = "LEAVE"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JoinEvent announces a new participant and carries the room's obstacles
type JoinEvent struct {
	Type        string          `json:"type"`
	RoomID      string          `json:"roomId"`
	PlayerID    string          `json:"playerId"`
	PlayerCount int             `json:"playerCount"`
	Obstacles   []maze.Obstacle `json:"obstacles"`
}

// Delta is a requested offset from the shared position
type Delta struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MoveCommand is the only inbound message
type MoveCommand struct {
	Type     string `json:"type"`
	Position *Delta `json:"position" validate:"required"`
}

// Direction converts the delta into a maze step
func (m *MoveCommand) Direction() maze.Position {
	return maze.Position{X: m.Position.X, Y: m.Position.Y}
}

// PositionUpdate carries the authoritative shared position
type PositionUpdate struct {
	Type     string        `json:"type"`
	Position maze.Position `json:"position"`
}

// LeaveEvent announces a departure with the post-departure count
type LeaveEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	PlayerCount int    `json:"playerCount"`
}

type envelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses a client frame. Unknown tags return ErrUnknownMessage;
// anything unparsable or missing its position returns ErrMalformedMessage.
func DecodeInbound(data []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeMove:
		var cmd MoveCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if err := validate.Struct(&cmd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &cmd, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

func encodeJoin(roomID, playerID string, count int, obstacles []maze.Obstacle) ([]byte, error) {
	return json.Marshal(JoinEvent{
		Type:        TypeJoin,
		RoomID:      roomID,
		PlayerID:    playerID,
		PlayerCount: count,
		Obstacles:   obstacles,
	})
}

func encodePositionUpdate(p maze.Position) ([]byte, error) {
	return json.Marshal(PositionUpdate{Type: TypePositionUpdate, Position: p})
}

func encodeLeave(roomID, playerID string, count int) ([]byte, error) {
	return json.Marshal(LeaveEvent{
		Type:        TypeLeave,
		RoomID:      roomID,
		PlayerID:    playerID,
		PlayerCount: count,
	})
}
