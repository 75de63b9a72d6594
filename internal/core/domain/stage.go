// Package domain contains the core types of the sift pipeline.
package domain

import "go.trai.ch/zerr"

// StageID identifies one of the five ordered pipeline stages.
type StageID string

const (
	// StageScan enumerates the files of the source directory.
	StageScan StageID = "scan"
	// StageDiscover classifies scanned files into coarse categories.
	StageDiscover StageID = "discover"
	// StageAnalyze asks the AI provider for a name, description and tags per file.
	StageAnalyze StageID = "analyze"
	// StageTaxonomy derives the target folder structure from the analyses.
	StageTaxonomy StageID = "taxonomy"
	// StageMove moves files into the derived taxonomy.
	StageMove StageID = "move"
)

// Stages returns all stages in execution order.
func Stages() []StageID {
	return []StageID{StageScan, StageDiscover, StageAnalyze, StageTaxonomy, StageMove}
}

// Position returns the 1-based position of the stage in the execution order,
// or 0 if the stage is unknown.
func (s StageID) Position() int {
	for i, stage := range Stages() {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// ParseStage resolves a user-supplied stage name. Both the stage names
// (scan, discover, analyze, taxonomy, move) and the positional aliases
// (stage1..stage5) are accepted.
func ParseStage(name string) (StageID, error) {
	aliases := map[string]StageID{
		"stage1": StageScan,
		"stage2": StageDiscover,
		"stage3": StageAnalyze,
		"stage4": StageTaxonomy,
		"stage5": StageMove,
	}
	if stage, ok := aliases[name]; ok {
		return stage, nil
	}
	for _, stage := range Stages() {
		if string(stage) == name {
			return stage, nil
		}
	}
	return "", zerr.With(ErrUnknownStage, "stage", name)
}

// StageStatus represents the status of a stage within a single run.
type StageStatus string

const (
	// StatusPending indicates the stage has not run yet.
	StatusPending StageStatus = "Pending"
	// StatusRunning indicates the stage is currently executing.
	StatusRunning StageStatus = "Running"
	// StatusCached indicates the stage result was served from the cache.
	StatusCached StageStatus = "Cached"
	// StatusComputed indicates the stage result was freshly computed.
	StatusComputed StageStatus = "Computed"
	// StatusFailed indicates the stage execution failed.
	StatusFailed StageStatus = "Failed"
)
