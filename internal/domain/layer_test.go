package domain

import (
	"errors"
	"testing"
)

func TestCompileLayerDefinitions(t *testing.T) {
	specs := []LayerDefinitionSpec{
		{ID: "layer_strong_claims", Name: "Strong Claims", Level: 2, Kind: LayerHypothesis,
			NodeKinds: []NodeKind{NodeHypothesis}, MinImpact: 0.8},
		{ID: "layer_ground", Level: 1, Kind: LayerEvidence,
			NodeKinds: []NodeKind{NodeEvidence, NodeKnowledge}},
	}

	defs, err := CompileLayerDefinitions(specs)
	if err != nil {
		t.Fatalf("CompileLayerDefinitions: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}

	strong := defs[0]
	if !strong.Matches(Node{Kind: NodeHypothesis, Meta: NodeMeta{ImpactScore: 0.85}}) {
		t.Error("high-impact hypothesis must match")
	}
	if strong.Matches(Node{Kind: NodeHypothesis, Meta: NodeMeta{ImpactScore: 0.5}}) {
		t.Error("low-impact hypothesis must not match")
	}
	if strong.Matches(Node{Kind: NodeEvidence, Meta: NodeMeta{ImpactScore: 0.9}}) {
		t.Error("unlisted kind must not match")
	}

	// Name falls back to the id.
	if defs[1].Name != "layer_ground" {
		t.Errorf("expected id as fallback name, got %q", defs[1].Name)
	}
	if !defs[1].Matches(Node{Kind: NodeKnowledge}) {
		t.Error("zero MinImpact must admit any listed kind")
	}
}

func TestCompileLayerDefinitionsRejectsInvalidSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec LayerDefinitionSpec
	}{
		{"missing id", LayerDefinitionSpec{Level: 1, NodeKinds: []NodeKind{NodeEvidence}}},
		{"non-positive level", LayerDefinitionSpec{ID: "x", Level: 0, NodeKinds: []NodeKind{NodeEvidence}}},
		{"no node kinds", LayerDefinitionSpec{ID: "x", Level: 1}},
		{"unknown node kind", LayerDefinitionSpec{ID: "x", Level: 1, NodeKinds: []NodeKind{"galaxy"}}},
	}
	for _, tc := range cases {
		_, err := CompileLayerDefinitions([]LayerDefinitionSpec{tc.spec})
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("%s: expected ValidationError, got %T", tc.name, err)
		}
	}
}
