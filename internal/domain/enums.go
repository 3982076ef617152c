package domain

type TaskType string

const (
	TaskTypeProject   TaskType = "project"
	TaskTypeTask      TaskType = "task"
	TaskTypeMilestone TaskType = "milestone"
)

// HealthLevel summarises schedule and cost performance.
type HealthLevel string

const (
	HealthOnTrack  HealthLevel = "on_track"
	HealthAtRisk   HealthLevel = "at_risk"
	HealthCritical HealthLevel = "critical"
)

// Stage identifies one generated planning artifact of a project.
type Stage string

const (
	StagePlan           Stage = "plan"
	StageStructure      Stage = "structure"
	StageSchedule       Stage = "schedule"
	StageBudget         Stage = "budget"
	StageRisk           Stage = "risk"
	StageKPIReport      Stage = "kpiReport"
	StageSCurveReport   Stage = "sCurveReport"
	StageConsultingPlan Stage = "consultingPlan"
)

// Stages lists every stage in generation order.
var Stages = []Stage{
	StagePlan,
	StageStructure,
	StageSchedule,
	StageBudget,
	StageRisk,
	StageKPIReport,
	StageSCurveReport,
	StageConsultingPlan,
}

// ParseStage resolves a stage name case-sensitively.
func ParseStage(s string) (Stage, bool) {
	for _, st := range Stages {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// HistoryFeature names a feature with its own capped history list.
type HistoryFeature string

const (
	FeatureChat       HistoryFeature = "chat"
	FeatureTranslator HistoryFeature = "translator"
	FeatureGeneration HistoryFeature = "generation"
)

// ValidHistoryFeatures is the canonical set of accepted history features.
var ValidHistoryFeatures = map[HistoryFeature]bool{
	FeatureChat:       true,
	FeatureTranslator: true,
	FeatureGeneration: true,
}

type RiskProbability string

const (
	ProbabilityLow    RiskProbability = "Low"
	ProbabilityMedium RiskProbability = "Medium"
	ProbabilityHigh   RiskProbability = "High"
)
