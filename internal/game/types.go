package game

import (
	"time"
)

type State string

const (
	StateLobby      State = "lobby"
	StateCollecting State = "collecting"
	StateRevealing  State = "revealing"
	StateEnded      State = "ended"
)

type Prompt string

const (
	PromptWho      Prompt = "Who"
	PromptWhat     Prompt = "What"
	PromptWithWhom Prompt = "WithWhom"
	PromptWhere    Prompt = "Where"
	PromptWhen     Prompt = "When"
)

// Prompts is the fixed category order. Assignment and turn order both follow it.
var Prompts = [...]Prompt{PromptWho, PromptWhat, PromptWithWhom, PromptWhere, PromptWhen}

// Valid reports whether p is one of the fixed categories.
func (p Prompt) Valid() bool {
	for _, q := range Prompts {
		if p == q {
			return true
		}
	}
	return false
}

const (
	MinPlayers     = 2
	MaxPlayers     = 5
	MaxNameLen     = 40
	MaxTextLen     = 120
	DefaultName    = "Player"
	DefaultColor   = "#6b7280"
	DefaultListLen = 5
)

type RoomOptions struct {
	Name       string `json:"name"`
	IsPublic   bool   `json:"isPublic"`
	MaxPlayers int    `json:"maxPlayers"`
	Filter     *bool  `json:"filter,omitempty"`
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`

	JoinedAt       time.Time `json:"-"`
	DisconnectedAt time.Time `json:"-"`
}

type Submission struct {
	Prompt      Prompt    `json:"prompt"`
	AuthorID    string    `json:"authorId"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Sentence struct {
	Round       int               `json:"round"`
	Parts       map[Prompt]string `json:"parts"`
	Authors     map[Prompt]string `json:"authors"`
	CompletedAt time.Time         `json:"completedAt"`
}

// TurnAssignment names the prompt currently being collected and who owns it.
type TurnAssignment struct {
	Prompt   Prompt `json:"prompt"`
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
}

type Reveal struct {
	Sentence map[Prompt]string `json:"sentence"`
	Round    int               `json:"round"`
}

type NoticeKind string

const (
	NoticeYourTurn  NoticeKind = "your-turn"
	NoticePlayAgain NoticeKind = "play-again"
)

// Notice is a message for a single player rather than the whole room.
type Notice struct {
	PlayerID string     `json:"playerId"`
	Kind     NoticeKind `json:"kind"`
	Prompt   Prompt     `json:"prompt,omitempty"`
	Round    int        `json:"round"`
}

// Outcome describes what a successful transition wants announced besides the
// room snapshot.
type Outcome struct {
	Turn    *TurnAssignment
	Reveal  *Reveal
	Notices []Notice
}

type Summary struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
}

type ActiveTurn struct {
	Prompt   Prompt `json:"prompt"`
	PlayerID string `json:"playerId"`
}

type Snapshot struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Public     bool        `json:"public"`
	Filter     bool        `json:"filter"`
	MaxPlayers int         `json:"maxPlayers"`
	HostID     string      `json:"hostId"`
	Players    []Player    `json:"players"`
	State      State       `json:"state"`
	Round      int         `json:"round"`
	Sentences  int         `json:"sentences"`
	Active     *ActiveTurn `json:"active"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
}
