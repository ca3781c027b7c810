package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignRotation(t *testing.T) {
	ids := []string{"p1", "p2"}

	round0 := Assign(ids, 0)
	assert.Equal(t, map[Prompt]string{
		PromptWho:      "p1",
		PromptWhat:     "p2",
		PromptWithWhom: "p1",
		PromptWhere:    "p2",
		PromptWhen:     "p1",
	}, round0)

	round1 := Assign(ids, 1)
	assert.Equal(t, "p2", round1[PromptWho])
	assert.Equal(t, "p1", round1[PromptWhat])
}

func TestAssignFivePlayers(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	for round := 0; round < 7; round++ {
		got := Assign(ids, round)
		for i, p := range Prompts {
			assert.Equal(t, ids[(round+i)%5], got[p], "round %d prompt %s", round, p)
		}
	}
}

func TestAssignDeterministicAndCovering(t *testing.T) {
	rosters := [][]string{
		{"a"},
		{"a", "b"},
		{"a", "b", "c"},
		{"a", "b", "c", "d"},
		{"a", "b", "c", "d", "e"},
	}
	for _, ids := range rosters {
		for round := 0; round < 10; round++ {
			first := Assign(ids, round)
			assert.Equal(t, first, Assign(ids, round))
			assert.Len(t, first, len(Prompts))

			seen := map[string]bool{}
			for _, id := range first {
				seen[id] = true
			}
			for _, id := range ids {
				assert.True(t, seen[id], "%v round %d: %s has no prompt", ids, round, id)
			}
		}
	}
}

func TestAssignEmpty(t *testing.T) {
	assert.Empty(t, Assign(nil, 3))
}

func TestPromptValid(t *testing.T) {
	for _, p := range Prompts {
		assert.True(t, p.Valid())
	}
	assert.False(t, Prompt("Why").Valid())
	assert.False(t, Prompt("who").Valid())
}
