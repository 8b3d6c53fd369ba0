package export

import (
	"errors"
	"fmt"
	"sort"

	"github.com/christopher-nones/resume-scorer/internal/models"
)

// Column labels shared by both sheets.
const (
	ColCandidate = "Candidate"
	ColTotal     = "Total Score"
	ColError     = "Error"
)

// ErrEmptyReport is returned when there are no results to render.
var ErrEmptyReport = errors.New("no valid results were generated")

// Table is an ordered list of columns plus rows keyed by column label. A row
// without a value for a column leaves that cell blank.
type Table struct {
	Columns []string
	Rows    []map[string]any
}

// BuildTables turns candidate results into the summary and detailed tables.
// Rows are sorted by descending total score; errored candidates sort after
// all scored ones, keeping their relative input order. Criterion columns
// appear in first-seen order across the input.
func BuildTables(results []models.CandidateResult) (summary, detailed Table, err error) {
	if len(results) == 0 {
		return Table{}, Table{}, ErrEmptyReport
	}

	criteria := distinctCriteria(results)
	anyScored, anyFailed := false, false
	for _, r := range results {
		if r.Failed() {
			anyFailed = true
		} else {
			anyScored = true
		}
	}

	summary.Columns = []string{ColCandidate}
	if anyScored {
		summary.Columns = append(summary.Columns, ColTotal)
		summary.Columns = append(summary.Columns, criteria...)
	}
	detailed.Columns = []string{ColCandidate}
	for _, c := range criteria {
		detailed.Columns = append(detailed.Columns, scoreColumn(c), justificationColumn(c))
	}
	if anyFailed {
		summary.Columns = append(summary.Columns, ColError)
		detailed.Columns = append(detailed.Columns, ColError)
	}

	for _, r := range sortResults(results) {
		if r.Failed() {
			row := map[string]any{ColCandidate: r.CandidateName, ColError: r.Error}
			summary.Rows = append(summary.Rows, row)
			detailed.Rows = append(detailed.Rows, row)
			continue
		}

		summaryRow := map[string]any{ColCandidate: r.CandidateName, ColTotal: r.TotalScore}
		detailedRow := map[string]any{ColCandidate: r.CandidateName}
		for _, entry := range r.Entries {
			summaryRow[entry.Criterion] = entry.Score
			detailedRow[scoreColumn(entry.Criterion)] = entry.Score
			detailedRow[justificationColumn(entry.Criterion)] = entry.Justification
		}
		summary.Rows = append(summary.Rows, summaryRow)
		detailed.Rows = append(detailed.Rows, detailedRow)
	}

	return summary, detailed, nil
}

// sortResults orders scored candidates by total descending; errored
// candidates go last and keep their relative input order. The sort is stable
// so ties also keep input order.
func sortResults(results []models.CandidateResult) []models.CandidateResult {
	sorted := make([]models.CandidateResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Failed() != sorted[j].Failed() {
			return !sorted[i].Failed()
		}
		if sorted[i].Failed() {
			return false
		}
		return sorted[i].TotalScore > sorted[j].TotalScore
	})
	return sorted
}

// distinctCriteria collects every criterion seen across all candidates, in
// first-seen order over the unsorted input.
func distinctCriteria(results []models.CandidateResult) []string {
	seen := make(map[string]bool)
	var criteria []string
	for _, r := range results {
		for _, entry := range r.Entries {
			if !seen[entry.Criterion] {
				seen[entry.Criterion] = true
				criteria = append(criteria, entry.Criterion)
			}
		}
	}
	return criteria
}

func scoreColumn(criterion string) string {
	return fmt.Sprintf("%s - Score", criterion)
}

func justificationColumn(criterion string) string {
	return fmt.Sprintf("%s - Justification", criterion)
}
