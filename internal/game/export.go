package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ExportRecord is one revealed sentence with author names resolved while the
// room was still consistent.
type ExportRecord struct {
	Code     string
	RoomName string
	Sentence Sentence
	Names    map[string]string // playerID -> display name
}

// NewExportRecord captures what the exporter needs from r's latest sentence.
func NewExportRecord(r *Room) (ExportRecord, bool) {
	if len(r.Sentences) == 0 {
		return ExportRecord{}, false
	}
	names := make(map[string]string, len(r.Players))
	for _, p := range r.Players {
		names[p.ID] = p.Name
	}
	return ExportRecord{Code: r.Code, RoomName: r.Name, Sentence: r.Sentences[len(r.Sentences)-1], Names: names}, true
}

// Exporter appends revealed sentences to a text file from its own goroutine so
// the event loop never waits on disk.
type Exporter struct {
	path    string
	records chan ExportRecord
}

func NewExporter(path string, buffer int) *Exporter {
	if buffer <= 0 {
		buffer = 64
	}
	return &Exporter{path: path, records: make(chan ExportRecord, buffer)}
}

// Enqueue hands rec to the writer. It never blocks; a full buffer drops rec.
func (e *Exporter) Enqueue(rec ExportRecord) bool {
	select {
	case e.records <- rec:
		return true
	default:
		log.Warn().Str("code", rec.Code).Msg("export buffer full, dropping sentence")
		return false
	}
}

func (e *Exporter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-e.records:
			if err := ExportSentence(rec, e.path); err != nil {
				log.Error().Err(err).Str("code", rec.Code).Msg("failed to export sentence")
				continue
			}
			log.Info().Str("code", rec.Code).Int("round", rec.Sentence.Round).Str("file", e.path).Msg("exported sentence")
		}
	}
}

// ExportSentence appends rec to filename, creating the file and its directory
// if needed.
func ExportSentence(rec ExportRecord, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatRecord(rec)); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

func formatRecord(rec ExportRecord) string {
	var sb strings.Builder
	at := rec.Sentence.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}
	sb.WriteString(fmt.Sprintf("Room %s \"%s\" - Round %d (%s)\n", rec.Code, rec.RoomName, rec.Sentence.Round+1, at.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for _, p := range Prompts {
		author := rec.Names[rec.Sentence.Authors[p]]
		if author == "" {
			author = "Unknown"
		}
		sb.WriteString(fmt.Sprintf("- %s: \"%s\" (%s)\n", p, rec.Sentence.Parts[p], author))
	}
	sb.WriteString("\n" + rec.Sentence.String() + "\n\n")
	return sb.String()
}
