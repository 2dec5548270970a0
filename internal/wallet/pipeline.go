package wallet

import (
	"cmp"
	"slices"
)

// Stage names a step of the display pipeline
type Stage int

const (
	StageIdle Stage = iota
	StageClassified
	StageFiltered
	StageSorted
	StageFormatted
	StageRowsReady
)

var stageNames = [...]string{
	StageIdle:       "idle",
	StageClassified: "classified",
	StageFiltered:   "filtered",
	StageSorted:     "sorted",
	StageFormatted:  "formatted",
	StageRowsReady:  "rows_ready",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// StageCount is the number of records left after a stage
type StageCount struct {
	Stage Stage `json:"stage"`
	Count int   `json:"count"`
}

// Formatted is the output of the first four stages, before prices are joined
type Formatted struct {
	Balances []FormattedBalance
	Excluded []Exclusion
	Trace    []StageCount
}

// Result is the output of a full pipeline run
type Result struct {
	Rows     []DisplayRow
	Excluded []Exclusion
	Trace    []StageCount
}

// Pipeline runs balances through classification, filtering, sorting,
// formatting and row building against a fixed priority table.
type Pipeline struct {
	Priorities PriorityTable
}

// NewPipeline returns a pipeline ranking chains with priorities
func NewPipeline(priorities PriorityTable) Pipeline {
	return Pipeline{Priorities: priorities}
}

type classified struct {
	index    int
	priority int
	balance  Balance
}

// Format classifies, filters, sorts and formats balances. The input slice is
// never modified.
func (p Pipeline) Format(balances []Balance) Formatted {
	out := Formatted{Trace: []StageCount{{Stage: StageIdle, Count: len(balances)}}}

	all := make([]classified, 0, len(balances))
	for i, b := range balances {
		all = append(all, classified{index: i, priority: p.Priorities.PriorityOf(b.Blockchain), balance: b})
	}
	out.Trace = append(out.Trace, StageCount{Stage: StageClassified, Count: len(all)})

	kept := make([]classified, 0, len(all))
	for _, c := range all {
		switch {
		case c.balance.Malformed():
			out.Excluded = append(out.Excluded, Exclusion{Index: c.index, Balance: c.balance, Reason: ReasonMalformed})
		case c.priority <= UnknownPriority:
			out.Excluded = append(out.Excluded, Exclusion{Index: c.index, Balance: c.balance, Reason: ReasonUnknownChain})
		case !c.balance.Amount.IsPositive():
			out.Excluded = append(out.Excluded, Exclusion{Index: c.index, Balance: c.balance, Reason: ReasonNonPositive})
		default:
			kept = append(kept, c)
		}
	}
	out.Trace = append(out.Trace, StageCount{Stage: StageFiltered, Count: len(kept)})

	slices.SortStableFunc(kept, func(a, b classified) int {
		return cmp.Compare(b.priority, a.priority)
	})
	out.Trace = append(out.Trace, StageCount{Stage: StageSorted, Count: len(kept)})

	out.Balances = make([]FormattedBalance, 0, len(kept))
	for _, c := range kept {
		out.Balances = append(out.Balances, Format(c.balance))
	}
	out.Trace = append(out.Trace, StageCount{Stage: StageFormatted, Count: len(out.Balances)})

	return out
}

// Rows finishes a formatted set by joining it with prices
func (p Pipeline) Rows(f Formatted, prices PriceTable) Result {
	rows := BuildRows(f.Balances, prices)
	trace := append(slices.Clone(f.Trace), StageCount{Stage: StageRowsReady, Count: len(rows)})
	return Result{
		Rows:     rows,
		Excluded: slices.Clone(f.Excluded),
		Trace:    trace,
	}
}

// Run executes the whole pipeline
func (p Pipeline) Run(balances []Balance, prices PriceTable) Result {
	return p.Rows(p.Format(balances), prices)
}
