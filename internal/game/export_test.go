package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() ExportRecord {
	return ExportRecord{
		Code:     "ABCDE",
		RoomName: "Friday",
		Sentence: Sentence{
			Round: 1,
			Parts: map[Prompt]string{
				PromptWho:      "a pirate",
				PromptWhat:     "danced",
				PromptWithWhom: "a ghost",
				PromptWhere:    "on the moon",
				PromptWhen:     "at noon",
			},
			Authors: map[Prompt]string{
				PromptWho:      "p1",
				PromptWhat:     "p2",
				PromptWithWhom: "p1",
				PromptWhere:    "p2",
				PromptWhen:     "gone",
			},
			CompletedAt: time.Date(2026, 10, 14, 12, 30, 0, 0, time.UTC),
		},
		Names: map[string]string{"p1": "Alice", "p2": "Bob"},
	}
}

func TestExportSentence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sentences.txt")

	require.NoError(t, ExportSentence(testRecord(), path))
	require.NoError(t, ExportSentence(testRecord(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Equal(t, 2, strings.Count(out, `Room ABCDE "Friday" - Round 2 (2026-10-14 12:30:00)`))
	assert.Contains(t, out, `- Who: "a pirate" (Alice)`)
	assert.Contains(t, out, `- Where: "on the moon" (Bob)`)
	assert.Contains(t, out, `- When: "at noon" (Unknown)`)
	assert.Contains(t, out, "a pirate danced with a ghost on the moon at noon.")
}

func TestNewExportRecord(t *testing.T) {
	reg, _ := newTestRegistry()
	room := newLobby(reg, 5, "p1", "p2")

	_, ok := NewExportRecord(room)
	assert.False(t, ok)

	_, err := room.Start("p1")
	require.NoError(t, err)
	_, err = fillRound(room)
	require.NoError(t, err)

	rec, ok := NewExportRecord(room)
	require.True(t, ok)
	assert.Equal(t, room.Code, rec.Code)
	assert.Equal(t, "P1", rec.Names["p1"])
	assert.Equal(t, room.Sentences[0], rec.Sentence)
}

func TestExporterDropsWhenFull(t *testing.T) {
	e := NewExporter(filepath.Join(t.TempDir(), "out.txt"), 1)
	assert.True(t, e.Enqueue(testRecord()))
	assert.False(t, e.Enqueue(testRecord()))
}
