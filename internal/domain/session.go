package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage numbers. Stages are strictly sequential; stage 9 is terminal.
const (
	StageInitialization      = 1
	StageDecomposition       = 2
	StageHypothesisPlanning  = 3
	StageEvidenceIntegration = 4
	StagePruningMerging      = 5
	StageSubgraphExtraction  = 6
	StageComposition         = 7
	StageReflection          = 8
	StageFinalAnalysis       = 9
	StageCount               = 9
)

var stageNames = map[int]string{
	StageInitialization:      "initialization",
	StageDecomposition:       "decomposition",
	StageHypothesisPlanning:  "hypothesis_planning",
	StageEvidenceIntegration: "evidence_integration",
	StagePruningMerging:      "pruning_merging",
	StageSubgraphExtraction:  "subgraph_extraction",
	StageComposition:         "composition",
	StageReflection:          "reflection",
	StageFinalAnalysis:       "final_analysis",
}

func StageName(stage int) string {
	if name, ok := stageNames[stage]; ok {
		return name
	}
	return "unknown"
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

type StageStatus string

const (
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "error"
)

// ResearchContext is the shared, mutable context threaded through stages.
type ResearchContext struct {
	Field       string   `json:"field"`
	Topic       string   `json:"topic"`
	Objectives  []string `json:"objectives"`
	Hypotheses  []string `json:"hypotheses"`
	Constraints []string `json:"constraints"`
}

// StageExecutionContext is one append-only log entry per stage invocation.
type StageExecutionContext struct {
	StageID            int         `json:"stage_id"`
	StageName          string      `json:"stage_name"`
	Status             StageStatus `json:"status"`
	APICallsMade       int         `json:"api_calls_made"`
	ConfidenceAchieved float64     `json:"confidence_achieved"`
	ErrorMessage       string      `json:"error_message,omitempty"`
	StartedAt          time.Time   `json:"started_at"`
	FinishedAt         time.Time   `json:"finished_at"`
}

// StageResult is the textual output of a stage, kept in order so stages
// 7-9 can chain on the content of earlier stages.
type StageResult struct {
	StageID int    `json:"stage_id"`
	Content string `json:"content"`
}

// Session is the queryable state of one reasoning run.
type Session struct {
	ID                uuid.UUID               `json:"id"`
	Question          string                  `json:"question"`
	Status            SessionStatus           `json:"status"`
	CurrentStage      int                     `json:"current_stage"`
	OverallConfidence float64                 `json:"overall_confidence"`
	Context           ResearchContext         `json:"research_context"`
	StageLog          []StageExecutionContext `json:"stage_log"`
	Results           []StageResult           `json:"stage_results"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// FieldAnalysis is the parsed result of field detection during stage 1.
// Malformed provider JSON falls back to DefaultFieldAnalysis.
type FieldAnalysis struct {
	Field            string   `json:"field"`
	Subfield         string   `json:"subfield,omitempty"`
	DisciplinaryTags []string `json:"disciplinary_tags,omitempty"`
}

// DefaultFieldAnalysis is the documented fallback when field detection
// returns unparseable output.
func DefaultFieldAnalysis() *FieldAnalysis {
	return &FieldAnalysis{
		Field:            "general science",
		DisciplinaryTags: []string{"interdisciplinary"},
	}
}
