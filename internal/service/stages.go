package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/llm"
	"go.uber.org/zap"
)

// runHypothesisPlanning generates exactly four hypotheses per dimension,
// each carrying mandatory falsification criteria, linked from its dimension
// by a supportive edge.
func (p *Pipeline) runHypothesisPlanning(ctx context.Context) (string, float64, error) {
	dimensions := p.arena.NodesByKind(domain.NodeDimension)
	if len(dimensions) == 0 {
		return "", 0, domain.NewValidationError("graph", "no dimension nodes; stage 2 must run first")
	}

	conf := domain.NewConfidenceVector(0.6, 0.7, 0.6, 0.5)
	created := 0
	for _, dim := range dimensions {
		callCtx, cancel := p.callContext(ctx)
		response, err := p.llm.Generate(callCtx, llm.HypothesisPrompt(dim.Label, p.research.Topic, p.research.Field, hypothesesPerDimension), 1024)
		cancel()
		p.countAPICall()
		if err != nil {
			return "", 0, fmt.Errorf("hypothesis generation for %s: %w", dim.Label, err)
		}

		proposals := parseHypotheses(response, dim.Label, hypothesesPerDimension)
		for i, prop := range proposals {
			id := fmt.Sprintf("hyp_%s_%d", strings.TrimPrefix(dim.ID, "dim_"), i+1)
			node := domain.Node{
				ID:         id,
				Label:      prop.label,
				Kind:       domain.NodeHypothesis,
				Confidence: conf,
				Meta: domain.NodeMeta{
					SourceDescription: "stage 3 hypothesis planning",
					Value:             prop.label,
					ImpactScore:       domain.ClampUnit(0.6 + 0.1*float64(i)),
					Hypothesis:        &domain.HypothesisMeta{FalsificationCriteria: prop.falsification},
				},
			}
			if p.embed != nil {
				embCtx, embCancel := p.callContext(ctx)
				emb, embErr := p.embed.Embed(embCtx, prop.label)
				embCancel()
				p.countAPICall()
				if embErr != nil {
					p.logger.Warn("hypothesis embedding failed", zap.String("hypothesis", id), zap.Error(embErr))
				} else {
					node.Embedding = emb
				}
			}
			if _, err := p.arena.AddNode(node); err != nil {
				return "", 0, err
			}
			p.arena.AddEdge(domain.Edge{
				ID:         "edge_" + dim.ID + "_" + id,
				Source:     dim.ID,
				Target:     id,
				Kind:       domain.EdgeSupportive,
				Confidence: stage3EdgeConfidence,
				Meta:       domain.EdgeMeta{Description: "dimension hypothesis"},
			})
			p.research.Hypotheses = append(p.research.Hypotheses, prop.label)
			created++
		}
	}

	content := fmt.Sprintf("Generated %d hypotheses across %d dimensions.", created, len(dimensions))
	return content, conf.Mean(), nil
}

type hypothesisProposal struct {
	label         string
	falsification string
}

// parseHypotheses extracts "hypothesis :: falsification" lines from
// free-form provider output, padding with deterministic fallbacks so the
// stage always yields exactly want hypotheses per dimension. A hypothesis
// is never left without falsification criteria.
func parseHypotheses(response, dimension string, want int) []hypothesisProposal {
	var out []hypothesisProposal
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)- ")
		if line == "" {
			continue
		}
		prop := hypothesisProposal{label: line}
		if idx := strings.Index(line, "::"); idx >= 0 {
			prop.label = strings.TrimSpace(line[:idx])
			prop.falsification = strings.TrimSpace(line[idx+2:])
		}
		if prop.label == "" {
			continue
		}
		if prop.falsification == "" {
			prop.falsification = placeholderFalsification(prop.label)
		}
		out = append(out, prop)
		if len(out) == want {
			break
		}
	}
	for len(out) < want {
		label := fmt.Sprintf("Hypothesis %d regarding %s", len(out)+1, dimension)
		out = append(out, hypothesisProposal{
			label:         label,
			falsification: placeholderFalsification(label),
		})
	}
	return out
}

func placeholderFalsification(label string) string {
	return fmt.Sprintf("Reject if no independent supporting evidence is found for: %s", label)
}

// evidenceLookup is the result of one hypothesis's external evidence
// gathering, collected before any graph mutation.
type evidenceLookup struct {
	hypothesisID string
	evidenceText string
	causalText   string
	causalErr    error
	err          error
}

// runEvidenceIntegration obtains evidence for every hypothesis, scores it,
// classifies the hypothesis-evidence edge, and finally synthesizes
// hyperedges once over the accumulated set. Lookups may run with bounded
// concurrency; graph mutation is applied afterwards in hypothesis-id order
// so the merge is deterministic.
func (p *Pipeline) runEvidenceIntegration(ctx context.Context) (string, float64, error) {
	hypotheses := p.arena.NodesByKind(domain.NodeHypothesis)
	if len(hypotheses) == 0 {
		return "", 0, domain.NewValidationError("graph", "no hypothesis nodes; stage 3 must run first")
	}
	sort.Slice(hypotheses, func(i, j int) bool { return hypotheses[i].ID < hypotheses[j].ID })

	lookups := p.gatherEvidence(ctx, hypotheses)

	for _, lk := range lookups {
		if lk.err != nil {
			return "", 0, fmt.Errorf("evidence lookup for %s: %w", lk.hypothesisID, lk.err)
		}
	}

	rootTags := p.rootTags()
	integrated := 0
	for _, lk := range lookups {
		hyp, ok := p.arena.Node(lk.hypothesisID)
		if !ok {
			continue
		}

		score := ScoreEvidence(lk.evidenceText)
		evID := "ev_" + lk.hypothesisID
		evNode, err := p.arena.AddNode(domain.Node{
			ID:         evID,
			Label:      "Evidence: " + hyp.Label,
			Kind:       domain.NodeEvidence,
			Confidence: score.Confidence,
			Meta: domain.NodeMeta{
				SourceDescription: "stage 4 evidence integration",
				Value:             lk.evidenceText,
				ImpactScore:       score.Confidence.Mean(),
				DisciplinaryTags:  rootTags,
				Evidence: &domain.EvidenceMeta{
					StatisticalPower: score.StatisticalPower,
					Quality:          score.Quality,
				},
			},
		})
		if err != nil {
			return "", 0, err
		}

		kind, meta := ClassifyEdge(lk.causalText, lk.causalErr, *hyp, *evNode)
		p.arena.AddEdge(domain.Edge{
			ID:         "edge_" + lk.hypothesisID + "_" + evID,
			Source:     lk.hypothesisID,
			Target:     evID,
			Kind:       kind,
			Confidence: score.Confidence.Mean(),
			Meta:       meta,
		})
		integrated++
	}

	hypers := SynthesizeHyperedges(p.arena)

	content := fmt.Sprintf("Integrated evidence for %d hypotheses; synthesized %d hyperedges.", integrated, len(hypers))
	return content, p.graphConfidence(), nil
}

// gatherEvidence performs the external calls for every hypothesis. With
// MaxInFlight > 1 lookups run concurrently behind a semaphore; results are
// returned in the caller's hypothesis order either way.
func (p *Pipeline) gatherEvidence(ctx context.Context, hypotheses []domain.Node) []evidenceLookup {
	lookups := make([]evidenceLookup, len(hypotheses))

	if p.cfg.MaxInFlight < 2 {
		for i, hyp := range hypotheses {
			lookups[i] = p.lookupEvidence(ctx, hyp)
		}
		return lookups
	}

	sem := make(chan struct{}, p.cfg.MaxInFlight)
	var wg sync.WaitGroup
	for i, hyp := range hypotheses {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, hyp domain.Node) {
			defer wg.Done()
			defer func() { <-sem }()
			lookups[i] = p.lookupEvidence(ctx, hyp)
		}(i, hyp)
	}
	wg.Wait()
	return lookups
}

// lookupEvidence searches for evidence, falling back to the inference
// provider with an evidence-oriented prompt when the search provider fails,
// then requests causal-analysis text for edge classification.
func (p *Pipeline) lookupEvidence(ctx context.Context, hyp domain.Node) evidenceLookup {
	lk := evidenceLookup{hypothesisID: hyp.ID}

	query := fmt.Sprintf("%s (%s)", hyp.Label, p.research.Field)
	searchCtx, cancel := p.callContext(ctx)
	text, err := p.search.Search(searchCtx, query, domain.SearchOpts{MaxResults: 5, Recency: "year"})
	cancel()
	p.countAPICall()
	if err != nil {
		p.logger.Warn("evidence search failed, falling back to inference provider",
			zap.String("hypothesis", hyp.ID), zap.Error(err))
		fbCtx, fbCancel := p.callContext(ctx)
		text, err = p.llm.Generate(fbCtx, llm.EvidencePrompt(hyp.Label, p.research.Field), 1024)
		fbCancel()
		p.countAPICall()
		if err != nil {
			lk.err = err
			return lk
		}
	}
	lk.evidenceText = text

	causalCtx, causalCancel := p.callContext(ctx)
	causal, causalErr := p.llm.Generate(causalCtx, llm.CausalAnalysisPrompt(hyp.Label, text), 512)
	causalCancel()
	p.countAPICall()
	lk.causalText = causal
	lk.causalErr = causalErr
	return lk
}

func (p *Pipeline) rootTags() []string {
	if root, ok := p.arena.Node("root"); ok {
		return root.Meta.DisciplinaryTags
	}
	return nil
}

// runSynthesisStage handles stages 7-9: externally synthesized content is
// generated from graph statistics and earlier stage results, recorded for
// chaining. No graph mutation happens here.
func (p *Pipeline) runSynthesisStage(ctx context.Context, stage int) (string, float64, error) {
	stats := p.arena.Snapshot(stage).Stats

	var prior strings.Builder
	for _, r := range p.results {
		if r.StageID >= domain.StageComposition {
			fmt.Fprintf(&prior, "[%s]\n%s\n\n", domain.StageName(r.StageID), r.Content)
		}
	}

	prompt := llm.SynthesisPrompt(domain.StageName(stage), p.question, p.research.Field,
		stats.TotalNodes, stats.TotalEdges, stats.TotalHyperEdges, prior.String())

	callCtx, cancel := p.callContext(ctx)
	content, err := p.llm.Generate(callCtx, prompt, 2048)
	cancel()
	p.countAPICall()
	if err != nil {
		return "", 0, fmt.Errorf("%s synthesis: %w", domain.StageName(stage), err)
	}

	return content, p.graphConfidence(), nil
}
