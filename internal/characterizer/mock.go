package characterizer

import "context"

const mockAnalysis = `{
  "change_analysis": {
    "lexical_change": {"has_changed": false, "summary": "Offline run; no comparison performed."},
    "strategic_framing": {"has_changed": false, "from_narrative": "", "to_narrative": "", "summary": "No significant change"},
    "target_audience": {"has_changed": false, "primary_audience": "", "summary": "No significant change"}
  },
  "ira_alignment": {"alignment_detected": false, "evidence_type": "none", "specific_evidence": [], "reasoning": "Offline run."},
  "overall_assessment": {"change_level": "none", "confidence": 0.0, "synthesis_reasoning": "Offline run."}
}`

// MockCompleter returns a fixed schema-valid "none" analysis without calling any service.
type MockCompleter struct{}

// Complete implements Completer.
func (MockCompleter) Complete(context.Context, Prompt) (string, error) {
	return mockAnalysis, nil
}
