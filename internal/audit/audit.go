package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/utils"
)

// Auditor writes one JSON document per record into AuditDir.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	return a.save(uuid.New().String(), data)
}

// SaveEvent stores the event under its own ID.
func (a *Auditor) SaveEvent(event *entities.AuditEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	return a.save(event.ID, event)
}

func (a *Auditor) save(name string, data any) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := name + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := utils.WriteFileAtomic(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}
	log.Printf("[AUDIT] saved %s", path)

	return filename, nil
}

// Events reads back every stored event, oldest first. Files that are not
// events are skipped.
func (a *Auditor) Events() ([]entities.AuditEvent, error) {
	entries, err := os.ReadDir(a.AuditDir)
	if errors.Is(err, os.ErrNotExist) {
		return []entities.AuditEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit directory: %w", err)
	}

	events := make([]entities.AuditEvent, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.AuditDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read audit file %s: %w", entry.Name(), err)
		}
		var event entities.AuditEvent
		if err := json.Unmarshal(data, &event); err != nil || event.EventType == "" {
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

func (a *Auditor) ensureAuditDir() error {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	return nil
}
