package characterizer

import (
	"context"
	"sync"
)

const sampleAnalysis = `{
  "change_analysis": {
    "lexical_change": {"has_changed": true, "summary": "Added sustainability terminology"},
    "strategic_framing": {"has_changed": false, "from_narrative": "Technology company", "to_narrative": "Technology company", "summary": "No significant change"},
    "target_audience": {"has_changed": false, "primary_audience": "B2B Customers", "summary": "No significant change"}
  },
  "ira_alignment": {"alignment_detected": false, "evidence_type": "none", "specific_evidence": [], "reasoning": "No IRA-specific terms found"},
  "overall_assessment": {"change_level": "minor", "confidence": 0.8, "synthesis_reasoning": "Minor vocabulary changes without strategic shift"}
}`

type fakeCompleter struct {
	err     error
	reply   string
	prompts []Prompt
	mu      sync.Mutex
}

func (f *fakeCompleter) Complete(_ context.Context, prompt Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)

	return f.reply, f.err
}
