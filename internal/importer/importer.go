// Package importer reads batches of tasks from files.
//
// Three formats are understood, chosen by file extension:
//   - .jsonl: one task object per line
//   - .yaml / .yml: a list of task objects
//   - anything else: plain text, one description per line
//
// Task objects use the keys description, due_date, priority and category.
package importer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tasklist/tasklist/internal/schema"
)

// Defaults fill the fields an entry leaves blank.
type Defaults struct {
	Priority int
	Category string
}

// ReadFile parses the tasks in path. Entries are returned in file order with
// defaults applied and due dates normalized; the first invalid entry fails
// the whole file so nothing is half-imported.
func ReadFile(path string, defaults Defaults) ([]schema.Task, error) {
	// #nosec G304 - path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var tasks []schema.Task
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		tasks, err = ParseJSONL(f)
	case ".yaml", ".yml":
		tasks, err = ParseYAML(f)
	default:
		tasks, err = ParseText(f)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range tasks {
		if err := finish(&tasks[i], defaults, now); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return tasks, nil
}

func finish(t *schema.Task, d Defaults, now time.Time) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Priority == 0 {
		t.Priority = d.Priority
	}
	if t.Category == "" {
		t.Category = d.Category
	}
	t.SetDefaults()

	due, err := schema.ParseDueDate(t.DueDate, now)
	if err != nil {
		return err
	}
	t.DueDate = due
	return t.Validate()
}

// ParseText reads one description per line, skipping blank lines.
func ParseText(r io.Reader) ([]schema.Task, error) {
	var tasks []schema.Task
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tasks = append(tasks, schema.Task{Description: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return tasks, nil
}

// ParseJSONL reads one task object per line. Blank lines are skipped.
func ParseJSONL(r io.Reader) ([]schema.Task, error) {
	var tasks []schema.Task
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var t schema.Task
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineNum, err)
		}
		// Ids and parents are assigned by the store, not by the file.
		t.ID, t.ParentID = 0, nil
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return tasks, nil
}

// ParseYAML reads a YAML sequence of task objects.
func ParseYAML(r io.Reader) ([]schema.Task, error) {
	var tasks []schema.Task
	if err := yaml.NewDecoder(r).Decode(&tasks); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return tasks, nil
}
