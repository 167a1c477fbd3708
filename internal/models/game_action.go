package models

// Action types accepted from clients.
const (
	ActionPlay      = "action_play"
	ActionReshuffle = "action_reshuffle"
	ActionEnd       = "action_end"
)

// GameAction captures a player's move on a session, as received over HTTP or websocket.
type GameAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload"`
}
