package importer

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tasklist/tasklist/internal/schema"
)

var testDefaults = Defaults{Priority: 2, Category: "Inbox"}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []schema.Task
	}{
		{
			name:    "plain text",
			file:    "tasks.txt",
			content: "Buy milk\n\n   \n  Call mom  \n",
			want: []schema.Task{
				{Description: "Buy milk", Priority: 2, Category: "Inbox"},
				{Description: "Call mom", Priority: 2, Category: "Inbox"},
			},
		},
		{
			name: "jsonl",
			file: "tasks.jsonl",
			content: `{"description":"Write report","due_date":"2025-12-31","priority":3,"category":"Work"}

{"description":"Stretch","id":99,"parent_id":4}
`,
			want: []schema.Task{
				{Description: "Write report", DueDate: "2025-12-31", Priority: 3, Category: "Work"},
				{Description: "Stretch", Priority: 2, Category: "Inbox"},
			},
		},
		{
			name: "yaml",
			file: "tasks.YML",
			content: `- description: Plan trip
  due_date: "2026-01-15"
  category: Travel
- description: Renew passport
  priority: 3
`,
			want: []schema.Task{
				{Description: "Plan trip", DueDate: "2026-01-15", Priority: 2, Category: "Travel"},
				{Description: "Renew passport", Priority: 3, Category: "Inbox"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(writeFile(t, tt.file, tt.content), testDefaults)
			if err != nil {
				t.Fatalf("ReadFile() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadFile_ZeroDefaults(t *testing.T) {
	got, err := ReadFile(writeFile(t, "tasks.txt", "one\n"), Defaults{})
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if got[0].Priority != schema.DefaultPriority || got[0].Category != schema.DefaultCategory {
		t.Errorf("task = %+v, want package defaults", got[0])
	}
}

func TestReadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errPart string
	}{
		{"bad json", "tasks.jsonl", "{\"description\":\"ok\"}\n{not json}\n", "line 2"},
		{"bad yaml", "tasks.yaml", "description: [unclosed", "invalid YAML"},
		{"bad priority", "tasks.jsonl", `{"description":"x","priority":9}`, "entry 1"},
		{"bad date", "tasks.yaml", "- description: x\n  due_date: banana\n", "invalid date format"},
		{"missing description", "tasks.jsonl", `{"priority":2}`, "description is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(writeFile(t, tt.file, tt.content), testDefaults)
			if err == nil {
				t.Fatal("ReadFile() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %q, want it to contain %q", err, tt.errPart)
			}
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"), testDefaults); err == nil {
		t.Error("ReadFile() on a missing file succeeded")
	}
}

func TestParseYAML_Empty(t *testing.T) {
	got, err := ParseYAML(strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Errorf("ParseYAML(\"\") = %v, %v", got, err)
	}
}
