// Package domain holds the lead pipeline rules shared by services and
// transport validation.
package domain

// Stage is a lead's position in the sales pipeline.
type Stage string

const (
	StageNew                 Stage = "new"
	StageContacted           Stage = "contacted"
	StageInspectionScheduled Stage = "inspection_scheduled"
	StageInspected           Stage = "inspected"
	StageQuoted              Stage = "quoted"
	StageWon                 Stage = "won"
	StageLost                Stage = "lost"
)

// InitialStage is assigned to every new lead, promoted or manual.
const InitialStage = StageNew

// transitions lists the forward moves per stage. A lead can be marked lost
// from any non-terminal stage; won and lost are terminal.
var transitions = map[Stage][]Stage{
	StageNew:                 {StageContacted, StageLost},
	StageContacted:           {StageInspectionScheduled, StageLost},
	StageInspectionScheduled: {StageInspected, StageContacted, StageLost},
	StageInspected:           {StageQuoted, StageLost},
	StageQuoted:              {StageWon, StageLost},
	StageWon:                 {},
	StageLost:                {},
}

func (s Stage) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Stage) IsTerminal() bool {
	return s == StageWon || s == StageLost
}

// CanTransitionTo reports whether moving from s to next is a legal pipeline
// step.
func (s Stage) CanTransitionTo(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
