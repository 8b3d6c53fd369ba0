package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/christopher-nones/resume-scorer/internal/models"
)

// scorePayload mirrors the JSON shape the scoring prompt mandates. Pointer
// fields distinguish absent keys from zero values so each one can default
// independently.
type scorePayload struct {
	CandidateName string `json:"candidate_name"`
	Scores        []struct {
		Criterion     *string  `json:"criterion"`
		Score         *float64 `json:"score"`
		Justification *string  `json:"justification"`
	} `json:"scores"`
}

// Normalize parses raw model output into a CandidateResult. Every optional
// field gets a default rather than failing the candidate: a missing
// candidate_name falls back to fallbackName, a missing scores array is
// treated as empty, and each entry defaults criterion to "Unknown", score to
// 0 and justification to "". The total is recomputed as the sum of entry
// scores; out-of-range scores pass through as returned.
func Normalize(raw, fallbackName string) (models.CandidateResult, error) {
	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return models.CandidateResult{}, err
	}

	var payload scorePayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return models.CandidateResult{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	result := models.CandidateResult{CandidateName: payload.CandidateName}
	if result.CandidateName == "" {
		result.CandidateName = fallbackName
	}

	for _, item := range payload.Scores {
		entry := models.ScoreEntry{Criterion: "Unknown"}
		if item.Criterion != nil {
			entry.Criterion = *item.Criterion
		}
		if item.Score != nil {
			entry.Score = int(*item.Score)
		}
		if item.Justification != nil {
			entry.Justification = *item.Justification
		}
		result.Entries = append(result.Entries, entry)
		result.TotalScore += entry.Score
	}

	return result, nil
}

// extractJSONObject locates the JSON object inside raw model output, which
// may be wrapped in prose or markdown fences despite the JSON response mode.
func extractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return raw[start : end+1], nil
}
