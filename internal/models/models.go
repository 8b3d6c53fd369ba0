package models

// ExtractedDocument is the outcome of pulling plain text out of one uploaded
// file. Extraction failures are recorded on the document instead of aborting
// the batch, so every upload produces exactly one record.
type ExtractedDocument struct {
	Filename     string `json:"filename"`
	FallbackName string `json:"fallback_name"` // filename minus extension
	Text         string `json:"text"`
	Error        string `json:"error,omitempty"`
}

// Failed reports whether text extraction failed for this document.
func (d ExtractedDocument) Failed() bool {
	return d.Error != ""
}

// ScoreEntry is one criterion evaluation returned by the model.
type ScoreEntry struct {
	Criterion     string `json:"criterion"`
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// CandidateResult holds the scores for one resume, or an error placeholder
// when scoring failed. TotalScore is always recomputed from Entries, never
// taken from model output.
type CandidateResult struct {
	CandidateName string       `json:"candidate_name"`
	Entries       []ScoreEntry `json:"scores,omitempty"`
	TotalScore    int          `json:"total_score"`
	Error         string       `json:"error,omitempty"`
}

// Failed reports whether this candidate could not be scored.
func (r CandidateResult) Failed() bool {
	return r.Error != ""
}

// CriteriaList is the payload returned by the criteria-extraction endpoint.
type CriteriaList struct {
	Criteria []string `json:"criteria"`
}
