package game

import (
	"strings"
)

// Start opens round zero. Only the host may start, from the lobby, with at
// least two players connected.
func (r *Room) Start(requester string) (Outcome, error) {
	switch r.State {
	case StateLobby:
	case StateEnded:
		return Outcome{}, ErrInvalidState
	default:
		return Outcome{}, ErrGameInProgress
	}
	if requester != r.HostID {
		return Outcome{}, ErrNotHost
	}
	if r.ConnectedCount() < MinPlayers {
		return Outcome{}, ErrNeedMorePlayers
	}
	r.Round = 0
	return r.beginRound(), nil
}

// Again opens the next round after a reveal. It is also accepted from the
// lobby so a host can resume after the room fell back there.
func (r *Room) Again(requester string) (Outcome, error) {
	switch r.State {
	case StateRevealing, StateLobby:
	case StateCollecting:
		return Outcome{}, ErrGameInProgress
	default:
		return Outcome{}, ErrInvalidState
	}
	if requester != r.HostID {
		return Outcome{}, ErrNotHost
	}
	if r.ConnectedCount() < MinPlayers {
		return Outcome{}, ErrNeedMorePlayers
	}
	r.Round++
	return r.beginRound(), nil
}

func (r *Room) beginRound() Outcome {
	r.clearRound()
	r.Assignments = Assign(r.ConnectedIDs(), r.Round)
	r.State = StateCollecting
	r.touch()
	return r.turnOutcome()
}

func (r *Room) turnOutcome() Outcome {
	t, ok := r.Current()
	if !ok {
		return Outcome{}
	}
	return Outcome{
		Turn:    &t,
		Notices: []Notice{{PlayerID: t.PlayerID, Kind: NoticeYourTurn, Prompt: t.Prompt, Round: t.Round}},
	}
}

// Submit records text for a prompt owned by requester this round. A second
// submission for the same prompt returns ErrDuplicateSubmission and changes
// nothing, so clients may resend safely.
func (r *Room) Submit(requester string, prompt Prompt, raw string) (Outcome, error) {
	if r.State != StateCollecting {
		return Outcome{}, ErrInvalidState
	}
	if !prompt.Valid() {
		return Outcome{}, ErrUnknownPrompt
	}
	if r.Assignments[prompt] != requester {
		return Outcome{}, ErrNotYourTurn
	}
	if r.Submissions[prompt] != nil {
		return Outcome{}, ErrDuplicateSubmission
	}
	text := r.clean(raw, MaxTextLen)
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyText
	}
	if r.Filter && !r.env.filter.Passes(text) {
		return Outcome{}, ErrContentRejected
	}

	now := r.env.now()
	r.Submissions[prompt] = &Submission{Prompt: prompt, AuthorID: requester, Text: text, SubmittedAt: now}
	r.touch()

	if len(r.Submissions) < len(Prompts) {
		return r.turnOutcome(), nil
	}

	s := Sentence{
		Round:       r.Round,
		Parts:       make(map[Prompt]string, len(Prompts)),
		Authors:     make(map[Prompt]string, len(Prompts)),
		CompletedAt: now,
	}
	for p, sub := range r.Submissions {
		s.Parts[p] = sub.Text
		s.Authors[p] = sub.AuthorID
	}
	r.Sentences = append(r.Sentences, s)
	r.State = StateRevealing
	r.clearRound()

	oc := Outcome{Reveal: &Reveal{Sentence: s.Parts, Round: s.Round}}
	if r.HostID != "" {
		oc.Notices = []Notice{{PlayerID: r.HostID, Kind: NoticePlayAgain, Round: s.Round}}
	}
	return oc, nil
}

// End terminates the game. Ended rooms stay around until their roster empties
// but are no longer listed or playable.
func (r *Room) End(requester string) error {
	if r.State == StateEnded {
		return ErrInvalidState
	}
	if requester != r.HostID {
		return ErrNotHost
	}
	r.State = StateEnded
	r.clearRound()
	r.touch()
	return nil
}

// String renders the sentence in prompt order.
func (s Sentence) String() string {
	parts := make([]string, 0, len(Prompts)+1)
	for _, p := range Prompts {
		if p == PromptWithWhom {
			parts = append(parts, "with")
		}
		parts = append(parts, s.Parts[p])
	}
	return strings.Join(parts, " ") + "."
}
