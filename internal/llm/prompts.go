package llm

import (
	"fmt"
	"strings"
)

const fieldDetectionPrompt = `You are a research field classifier. Identify the primary scientific field of the following research question.

Respond ONLY with JSON, no markdown:
{"field":"...","subfield":"...","disciplinary_tags":["...","..."]}

Use lowercase disciplinary tags. Question:
%s`

const hypothesisPromptTemplate = `You are a research hypothesis generator working on the "%s" dimension of a scientific investigation.

Topic: %s
Field: %s

Generate exactly %d competing, falsifiable hypotheses addressing this dimension. For each hypothesis, state the hypothesis and its falsification criterion separated by "::".

Respond with one hypothesis per line, no numbering, no markdown. Example:
Increased X drives Y through mechanism Z :: Reject if Y is unchanged when X is experimentally elevated`

const evidencePromptTemplate = `You are a scientific evidence summarizer in the field of %s.

Summarize the strongest published evidence bearing on the following hypothesis. Mention study designs (meta-analysis, randomized controlled trial, case study, etc.), sample characteristics and statistical significance where known. Note any controversy or dispute.

Hypothesis: %s

Respond with a single factual paragraph. No markdown.`

const causalAnalysisPromptTemplate = `You are a causal-inference analyst. Given a hypothesis and its evidence, characterize the relationship between them.

Hypothesis: %s
Evidence: %s

Describe the relationship in one or two sentences using precise causal language where warranted: "directly causes", "counterfactual", "confounded by", "correlates with", "contradicts", or "supports". No markdown.`

const synthesisPromptTemplate = `You are a scientific reasoning engine performing the "%s" step of an analysis.

Research question: %s
Field: %s
Graph state: %d nodes, %d edges, %d hyperedges.
%s
Produce a rigorous narrative synthesis for this step. Cite the graph structure where relevant. No markdown headings.`

// FieldDetectionPrompt classifies the research question into a field.
func FieldDetectionPrompt(question string) string {
	return fmt.Sprintf(fieldDetectionPrompt, question)
}

// HypothesisPrompt requests n competing hypotheses for one dimension.
func HypothesisPrompt(dimension, topic, field string, n int) string {
	return fmt.Sprintf(hypothesisPromptTemplate, dimension, topic, field, n)
}

// EvidencePrompt is the fallback evidence request when search is unavailable.
func EvidencePrompt(hypothesis, field string) string {
	if field == "" {
		field = "general science"
	}
	return fmt.Sprintf(evidencePromptTemplate, field, hypothesis)
}

// CausalAnalysisPrompt asks for the causal character of evidence against a
// hypothesis. The response feeds the edge-kind classifier.
func CausalAnalysisPrompt(hypothesis, evidence string) string {
	return fmt.Sprintf(causalAnalysisPromptTemplate, hypothesis, evidence)
}

// SynthesisPrompt drives the composition, reflection and final-analysis
// steps, chaining on the output of earlier steps.
func SynthesisPrompt(stageName, question, field string, nodes, edges, hyperedges int, prior string) string {
	if field == "" {
		field = "general science"
	}
	section := ""
	if strings.TrimSpace(prior) != "" {
		section = "Prior analysis:\n" + prior + "\n"
	}
	return fmt.Sprintf(synthesisPromptTemplate, stageName, question, field, nodes, edges, hyperedges, section)
}
