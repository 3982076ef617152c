package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for project import.
type ImportSchema struct {
	Project     ProjectImport      `json:"project"`
	Tasks       []TaskImport       `json:"tasks,omitempty"`
	BudgetItems []BudgetItemImport `json:"budget_items,omitempty"`
}

// ProjectImport holds the project fields and planning criteria.
type ProjectImport struct {
	Name       string `json:"name"`
	Objective  string `json:"objective"`
	Location   string `json:"location,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Budget     string `json:"budget,omitempty"`
	BudgetType string `json:"budget_type,omitempty"`
	Duration   string `json:"duration,omitempty"`
}

// TaskImport is one schedule row. Ref becomes the task id; ParentRef
// must name a task of type "project".
type TaskImport struct {
	Ref       string   `json:"ref"`
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	ParentRef string   `json:"parent_ref,omitempty"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Progress  *int     `json:"progress,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`
	Resource  string   `json:"resource,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// BudgetItemImport is one budget line.
type BudgetItemImport struct {
	Category           string  `json:"category"`
	Description        string  `json:"description,omitempty"`
	LaborHours         float64 `json:"labor_hours,omitempty"`
	LaborCost          float64 `json:"labor_cost,omitempty"`
	MaterialsCost      float64 `json:"materials_cost,omitempty"`
	ContingencyPercent float64 `json:"contingency_percent,omitempty"`
}

// ParseImportSchema parses a project import document.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// LoadImportSchema reads and parses a project import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}
