package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/graph"
	"go.uber.org/zap"
)

const (
	defaultProviderTimeout = 30 * time.Second

	stage2EdgeConfidence   = 0.7
	stage3EdgeConfidence   = 0.65
	hypothesesPerDimension = 4
)

// Stage 2 creates exactly these dimensions, in this order. The first three
// carry the higher impact score.
var decompositionDimensions = []string{
	"Scope",
	"Objectives",
	"Constraints",
	"Data Needs",
	"Use Cases",
	"Potential Biases",
	"Knowledge Gaps",
}

const (
	highDimensionImpact    = 0.9
	defaultDimensionImpact = 0.7
	highImpactDimensions   = 3
)

// PipelineConfig tunes provider calls issued by the pipeline.
type PipelineConfig struct {
	// ProviderTimeout bounds each external call.
	ProviderTimeout time.Duration
	// MaxInFlight bounds concurrent evidence lookups in stage 4.
	// Values below 2 keep the sequential default.
	MaxInFlight int
}

// Pipeline grows one session's reasoning graph through nine strictly
// sequential stages. It owns its arena and research context; callers
// serialize stage execution per session.
type Pipeline struct {
	arena    *graph.Arena
	research domain.ResearchContext
	question string

	llm    domain.InferenceClient
	search domain.SearchClient
	embed  domain.EmbeddingClient
	logger *zap.Logger
	cfg    PipelineConfig

	currentStage int
	results      []domain.StageResult
	stageLog     []domain.StageExecutionContext

	callMu   sync.Mutex
	apiCalls int
}

func NewPipeline(
	question string,
	research domain.ResearchContext,
	llm domain.InferenceClient,
	search domain.SearchClient,
	embed domain.EmbeddingClient,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.MaxInFlight < 1 {
		cfg.MaxInFlight = 1
	}
	return &Pipeline{
		arena:    graph.NewArena(),
		research: research,
		question: question,
		llm:      llm,
		search:   search,
		embed:    embed,
		logger:   logger,
		cfg:      cfg,
	}
}

// Arena exposes the pipeline's graph for read-side services.
func (p *Pipeline) Arena() *graph.Arena { return p.arena }

// CurrentStage returns the last completed stage, 0 before stage 1.
func (p *Pipeline) CurrentStage() int { return p.currentStage }

// Completed reports whether the terminal stage has run.
func (p *Pipeline) Completed() bool { return p.currentStage >= domain.StageFinalAnalysis }

// Research returns a copy of the shared research context.
func (p *Pipeline) Research() domain.ResearchContext { return p.research }

// StageLog returns the append-only per-stage execution log.
func (p *Pipeline) StageLog() []domain.StageExecutionContext {
	out := make([]domain.StageExecutionContext, len(p.stageLog))
	copy(out, p.stageLog)
	return out
}

// Results returns the ordered textual stage results.
func (p *Pipeline) Results() []domain.StageResult {
	out := make([]domain.StageResult, len(p.results))
	copy(out, p.results)
	return out
}

// OverallConfidence aggregates completed-stage confidences with the
// position-weighted average.
func (p *Pipeline) OverallConfidence() float64 {
	var scores []float64
	for _, sc := range p.stageLog {
		if sc.Status == domain.StageCompleted {
			scores = append(scores, sc.ConfidenceAchieved)
		}
	}
	return domain.WeightedStageAverage(scores)
}

// Snapshot exports the graph through the validity views as of the last
// completed stage.
func (p *Pipeline) Snapshot() *domain.GraphData {
	return p.arena.Snapshot(p.currentStage)
}

// RunNextStage executes the next stage in sequence, records its execution
// context, and returns the post-stage graph export. A failed stage records
// status=error and returns a StageError; the pipeline halts at that stage.
func (p *Pipeline) RunNextStage(ctx context.Context) (*domain.GraphData, error) {
	stage := p.currentStage + 1
	if stage > domain.StageCount {
		return nil, domain.NewValidationError("stage", fmt.Sprintf("pipeline already completed all %d stages", domain.StageCount))
	}
	if p.llm == nil || p.search == nil || p.embed == nil {
		return nil, domain.NewValidationError("providers", "inference, search, and embedding clients must be configured")
	}

	sc := domain.StageExecutionContext{
		StageID:   stage,
		StageName: domain.StageName(stage),
		Status:    domain.StageInProgress,
		StartedAt: time.Now(),
	}
	p.resetAPICalls()

	p.logger.Info("stage starting",
		zap.Int("stage", stage),
		zap.String("name", sc.StageName))

	content, confidence, err := p.executeStage(ctx, stage)

	sc.APICallsMade = p.takeAPICalls()
	sc.FinishedAt = time.Now()

	if err != nil {
		sc.Status = domain.StageFailed
		sc.ErrorMessage = err.Error()
		p.stageLog = append(p.stageLog, sc)
		p.logger.Error("stage failed",
			zap.Int("stage", stage),
			zap.Error(err))
		return nil, &domain.StageError{Stage: stage, Err: err}
	}

	sc.Status = domain.StageCompleted
	sc.ConfidenceAchieved = domain.ClampUnit(confidence)
	p.stageLog = append(p.stageLog, sc)
	p.results = append(p.results, domain.StageResult{StageID: stage, Content: content})
	p.currentStage = stage

	p.logger.Info("stage completed",
		zap.Int("stage", stage),
		zap.Float64("confidence", sc.ConfidenceAchieved),
		zap.Int("api_calls", sc.APICallsMade))

	return p.arena.Snapshot(stage), nil
}

func (p *Pipeline) executeStage(ctx context.Context, stage int) (string, float64, error) {
	switch stage {
	case domain.StageInitialization:
		return p.runInitialization(ctx)
	case domain.StageDecomposition:
		return p.runDecomposition()
	case domain.StageHypothesisPlanning:
		return p.runHypothesisPlanning(ctx)
	case domain.StageEvidenceIntegration:
		return p.runEvidenceIntegration(ctx)
	case domain.StagePruningMerging:
		return p.runPruningMerging()
	case domain.StageSubgraphExtraction:
		return p.runSubgraphExtraction()
	case domain.StageComposition, domain.StageReflection, domain.StageFinalAnalysis:
		return p.runSynthesisStage(ctx, stage)
	default:
		return "", 0, domain.NewValidationError("stage", fmt.Sprintf("unknown stage %d", stage))
	}
}

// runInitialization creates the root node from field classification.
// Root confidence is fixed at [0.8, 0.7, 0.6, 0.8].
func (p *Pipeline) runInitialization(ctx context.Context) (string, float64, error) {
	if strings.TrimSpace(p.question) == "" {
		return "", 0, domain.NewValidationError("question", "must not be empty")
	}

	callCtx, cancel := p.callContext(ctx)
	analysis, err := p.llm.DetectField(callCtx, p.question)
	cancel()
	p.countAPICall()
	if err != nil {
		return "", 0, fmt.Errorf("field detection: %w", err)
	}

	p.research.Field = analysis.Field
	if p.research.Topic == "" {
		p.research.Topic = p.question
	}

	root, err := p.arena.AddNode(domain.Node{
		ID:         "root",
		Label:      p.question,
		Kind:       domain.NodeRoot,
		Confidence: domain.NewConfidenceVector(0.8, 0.7, 0.6, 0.8),
		Meta: domain.NodeMeta{
			SourceDescription: "stage 1 field classification",
			Value:             analysis.Field,
			ImpactScore:       1.0,
			DisciplinaryTags:  analysis.DisciplinaryTags,
		},
	})
	if err != nil {
		return "", 0, err
	}

	content := fmt.Sprintf("Initialized research graph for %q in field %q.", p.question, analysis.Field)
	return content, root.Confidence.Mean(), nil
}

// runDecomposition creates the seven fixed dimension nodes, each linked
// from root by a supportive edge.
func (p *Pipeline) runDecomposition() (string, float64, error) {
	if !p.arena.HasNode("root") {
		return "", 0, domain.NewValidationError("graph", "root node missing; stage 1 must run first")
	}

	conf := domain.NewConfidenceVector(0.7, 0.8, 0.7, 0.7)
	for i, name := range decompositionDimensions {
		impact := defaultDimensionImpact
		if i < highImpactDimensions {
			impact = highDimensionImpact
		}
		id := "dim_" + slug(name)
		if _, err := p.arena.AddNode(domain.Node{
			ID:         id,
			Label:      name,
			Kind:       domain.NodeDimension,
			Confidence: conf,
			Meta: domain.NodeMeta{
				SourceDescription: "stage 2 decomposition",
				Value:             fmt.Sprintf("%s of: %s", name, p.question),
				ImpactScore:       impact,
			},
		}); err != nil {
			return "", 0, err
		}
		p.arena.AddEdge(domain.Edge{
			ID:         "edge_root_" + id,
			Source:     "root",
			Target:     id,
			Kind:       domain.EdgeSupportive,
			Confidence: stage2EdgeConfidence,
			Meta:       domain.EdgeMeta{Description: "root decomposition"},
		})
	}

	content := fmt.Sprintf("Decomposed the question into %d dimensions.", len(decompositionDimensions))
	return content, conf.Mean(), nil
}

// graphConfidence is the mean over all node confidence means.
func (p *Pipeline) graphConfidence() float64 {
	nodes := p.arena.Nodes()
	if len(nodes) == 0 {
		return 0
	}
	var sum float64
	for _, n := range nodes {
		sum += n.Confidence.Mean()
	}
	return sum / float64(len(nodes))
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.ProviderTimeout)
}

func (p *Pipeline) countAPICall() {
	p.callMu.Lock()
	p.apiCalls++
	p.callMu.Unlock()
}

func (p *Pipeline) resetAPICalls() {
	p.callMu.Lock()
	p.apiCalls = 0
	p.callMu.Unlock()
}

func (p *Pipeline) takeAPICalls() int {
	p.callMu.Lock()
	defer p.callMu.Unlock()
	return p.apiCalls
}
