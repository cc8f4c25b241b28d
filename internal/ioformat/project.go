package ioformat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/floorplan/internal/model"
)

// projectFileVersion is bumped whenever model.Project's on-disk shape
// changes in a way that would break older saves.
const projectFileVersion = "1.0.0"

// projectFile is the on-disk envelope around model.Project: a version tag
// and a creation timestamp wrapping the actual payload.
type projectFile struct {
	Version   string        `json:"version"`
	CreatedAt string        `json:"created_at"`
	Project   model.Project `json:"project"`
}

// SaveProject writes a Problem (plus optional last Result) to path as
// JSON, letting a caller resume from a finished or timed-out run without
// re-parsing the original problem-file grammar (SPEC_FULL.md §9).
func SaveProject(path, name string, p *model.Problem, res *model.Result) error {
	file := projectFile{
		Version:   projectFileVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Project:   model.ToProject(name, p, res),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// LoadProject reads a project JSON file back into a Problem.
func LoadProject(path string) (*model.Problem, model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	var file projectFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if file.Version == "" {
		return nil, model.Project{}, fmt.Errorf("invalid project file: missing version field")
	}
	return model.FromProject(file.Project), file.Project, nil
}
