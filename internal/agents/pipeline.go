package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resume-review-backend/internal/llm"
	"resume-review-backend/internal/shared/telemetry"
)

// DefaultTimeout bounds a single agent invocation.
const DefaultTimeout = 120 * time.Second

// Pipeline runs the structure and appeal agents concurrently over one
// review. Both agents must succeed for the run to succeed.
type Pipeline struct {
	LLM     llm.Client
	Audit   llm.AuditStore
	Timeout time.Duration
}

// NewPipeline constructs a pipeline with the default per-agent timeout.
func NewPipeline(client llm.Client, audit llm.AuditStore) *Pipeline {
	return &Pipeline{LLM: client, Audit: audit, Timeout: DefaultTimeout}
}

// Run invokes both agents and returns their combined output. Any agent
// error fails the whole run, but a failing agent does not cancel its
// sibling: both invocations finish so the audit trail holds whatever
// each agent produced.
func (p *Pipeline) Run(ctx context.Context, in Input) (Output, error) {
	var out Output

	var g errgroup.Group
	g.Go(func() error {
		analysis, completion, err := runAgent[StructureAnalysis](ctx, p, AgentStructure, structureTemplate, in)
		if err != nil {
			return fmt.Errorf("structure agent: %w", err)
		}
		if err := validateStructureScores(analysis.Scores); err != nil {
			return fmt.Errorf("structure agent: %w", err)
		}
		out.Structure = analysis
		out.Model = completion.Model
		out.RawStructure = completion.Text
		return nil
	})
	g.Go(func() error {
		analysis, completion, err := runAgent[AppealAnalysis](ctx, p, AgentAppeal, appealTemplate, in)
		if err != nil {
			return fmt.Errorf("appeal agent: %w", err)
		}
		if err := validateAppealScores(analysis.Scores); err != nil {
			return fmt.Errorf("appeal agent: %w", err)
		}
		out.Appeal = analysis
		out.RawAppeal = completion.Text
		return nil
	})
	if err := g.Wait(); err != nil {
		return Output{}, err
	}
	return out, nil
}

func runAgent[T any](ctx context.Context, p *Pipeline, name, template string, in Input) (T, llm.Completion, error) {
	var zero T

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	user := renderPrompt(template, in)
	completion, err := p.LLM.Complete(ctx, llm.CompletionRequest{
		System:    systemPrompt,
		User:      user,
		ForceJSON: true,
	})
	if err != nil {
		return zero, llm.Completion{}, err
	}

	p.recordUsage(ctx, name, user, in, completion)

	cleaned := CleanJSON(completion.Text)
	var parsed T
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return zero, llm.Completion{}, fmt.Errorf("parse output: %w", err)
	}
	return parsed, completion, nil
}

// recordUsage appends an audit row for the invocation. Audit failures are
// logged, never surfaced: the review outcome does not depend on the audit
// trail.
func (p *Pipeline) recordUsage(ctx context.Context, name, prompt string, in Input, completion llm.Completion) {
	if p.Audit == nil {
		return
	}
	variables, _ := json.Marshal(map[string]string{
		"targetRole":      in.TargetRole,
		"targetIndustry":  in.TargetIndustry,
		"experienceLevel": in.ExperienceLevel,
	})
	rec := llm.PromptUsageRecord{
		ID:              uuid.NewString(),
		ReviewRequestID: in.ReviewRequestID,
		AgentName:       name,
		Prompt:          prompt,
		PromptHash:      llm.PromptHash(systemPrompt, prompt),
		Variables:       variables,
		RawResponse:     completion.Text,
		TokenCount:      completion.TotalTokens,
		CreatedAt:       time.Now().UTC(),
	}
	if err := p.Audit.Append(context.WithoutCancel(ctx), rec); err != nil {
		telemetry.Warn("prompt usage append failed", map[string]any{
			"review_request_id": in.ReviewRequestID,
			"agent":             name,
			"error":             err.Error(),
		})
	}
}

func validateStructureScores(s StructureScores) error {
	return validateScores(map[string]float64{
		"format":       s.Format,
		"organization": s.Organization,
		"tone":         s.Tone,
		"completeness": s.Completeness,
	})
}

func validateAppealScores(s AppealScores) error {
	return validateScores(map[string]float64{
		"achievementRelevance":   s.AchievementRelevance,
		"skillsAlignment":        s.SkillsAlignment,
		"experienceFit":          s.ExperienceFit,
		"competitivePositioning": s.CompetitivePositioning,
	})
}

func validateScores(scores map[string]float64) error {
	for name, v := range scores {
		if v < 0 || v > 100 {
			return fmt.Errorf("score %s out of range: %v", name, v)
		}
	}
	return nil
}
