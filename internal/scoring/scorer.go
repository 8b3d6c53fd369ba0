package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/christopher-nones/resume-scorer/internal/models"
)

// PromptRunner is the slice of the LLM client the scorer needs. Satisfied by
// *llm.Client.
type PromptRunner interface {
	JSONPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Scorer evaluates extracted documents against a criteria list using an LLM,
// isolating failures per candidate so a batch always completes.
type Scorer struct {
	runner      PromptRunner
	concurrency int
}

// NewScorer creates a Scorer. concurrency bounds how many candidates are
// scored at once; 1 means strictly sequential.
func NewScorer(runner PromptRunner, concurrency int) *Scorer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scorer{runner: runner, concurrency: concurrency}
}

// ExtractCriteria asks the model for ranked evaluation criteria from a job
// description, optionally merging caller-supplied additional criteria.
func (s *Scorer) ExtractCriteria(ctx context.Context, jobDescription string, additionalCriteria []string) (models.CriteriaList, error) {
	raw, err := s.runner.JSONPrompt(ctx, CriteriaSystemPrompt, BuildCriteriaPrompt(jobDescription, additionalCriteria))
	if err != nil {
		return models.CriteriaList{}, err
	}

	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return models.CriteriaList{}, err
	}

	var list models.CriteriaList
	if err := json.Unmarshal([]byte(jsonStr), &list); err != nil {
		return models.CriteriaList{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return list, nil
}

// ScoreResumes scores every document independently and returns one result per
// document, in input order. Documents that failed extraction, and candidates
// whose LLM call or response parsing fails, yield error placeholders while
// the rest of the batch continues.
func (s *Scorer) ScoreResumes(ctx context.Context, docs []models.ExtractedDocument, criteria []string, jobTitle string) []models.CandidateResult {
	results := make([]models.CandidateResult, len(docs))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc models.ExtractedDocument) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.scoreOne(ctx, doc, criteria, jobTitle)
		}(i, doc)
	}
	wg.Wait()

	return results
}

func (s *Scorer) scoreOne(ctx context.Context, doc models.ExtractedDocument, criteria []string, jobTitle string) models.CandidateResult {
	if doc.Failed() {
		return models.CandidateResult{CandidateName: doc.FallbackName, Error: doc.Error}
	}

	raw, err := s.runner.JSONPrompt(ctx, ScoringSystemPrompt(jobTitle), BuildScoringPrompt(doc.Text, criteria, jobTitle))
	if err != nil {
		log.Error().Str("file", doc.Filename).Err(err).Msg("scoring call failed")
		return models.CandidateResult{
			CandidateName: doc.FallbackName,
			Error:         fmt.Sprintf("Failed to analyze: %v", err),
		}
	}
	log.Info().Str("file", doc.Filename).Msg("received scoring response")

	result, err := Normalize(raw, doc.FallbackName)
	if err != nil {
		log.Error().Str("file", doc.Filename).Err(err).Msg("response parsing failed")
		return models.CandidateResult{
			CandidateName: doc.FallbackName,
			Error:         fmt.Sprintf("Failed to analyze: %v", err),
		}
	}
	return result
}
