package silver

import (
	"fmt"

	"github.com/silverbooks-dev/silverbooks/internal/aggregate"
	"github.com/silverbooks-dev/silverbooks/internal/pgc"
)

// Anomaly is one per-record problem found during a batch. Anomalies are
// collected and reported with the batch result; they never abort the run.
type Anomaly struct {
	Stage  string // which pipeline stage found it
	Ref    string // the record it concerns (account number, entry/line)
	Reason string
}

const (
	StageClassify  = "classify"
	StageAggregate = "aggregate"
	StageResolve   = "resolve"
)

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %s: %s", a.Stage, a.Ref, a.Reason)
}

func gapAnomalies(gaps []pgc.Gap) []Anomaly {
	out := make([]Anomaly, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, Anomaly{
			Stage:  StageClassify,
			Ref:    fmt.Sprintf("account %d (%s)", g.AccountNumber, g.AccountID),
			Reason: g.Reason,
		})
	}
	return out
}

func issueAnomalies(issues []aggregate.Issue) []Anomaly {
	out := make([]Anomaly, 0, len(issues))
	for _, i := range issues {
		ref := fmt.Sprintf("entry %d", i.EntryNumber)
		if i.LineNumber > 0 {
			ref = fmt.Sprintf("entry %d line %d", i.EntryNumber, i.LineNumber)
		}
		out = append(out, Anomaly{Stage: StageAggregate, Ref: ref, Reason: i.Reason})
	}
	return out
}
