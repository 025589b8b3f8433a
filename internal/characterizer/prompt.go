package characterizer

import (
	"fmt"

	"github.com/yudduy/ira/pkg/utils"
)

// Prompt is one system plus user instruction pair.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are a research analyst specializing in corporate communications, strategic " +
	"management, and policy analysis. Your task is to rigorously analyze and compare " +
	"two versions of a company's website text: one from before the US Inflation " +
	"Reduction Act (IRA) and one from after."

const userTemplate = `Compare the PRE-IRA and POST-IRA texts below. Analyze the changes along three specific dimensions first (lexical, framing, audience), then assess IRA alignment, and finally synthesize these findings into an overall assessment.

## PRE-IRA TEXT (Full Year 2022):
%s

## POST-IRA TEXT (Full Year 2023):
%s

Respond with ONLY a JSON object following this exact structure:
{
  "change_analysis": {
    "lexical_change": {
      "has_changed": true,
      "summary": "Briefly describe the key changes in vocabulary and keywords."
    },
    "strategic_framing": {
      "has_changed": false,
      "from_narrative": "Describe the company's core identity/mission in the pre-IRA text.",
      "to_narrative": "Describe the company's core identity/mission in the post-IRA text.",
      "summary": "Summarize the change in the company's narrative identity. Note 'No significant change' if applicable."
    },
    "target_audience": {
      "has_changed": false,
      "primary_audience": "Describe the main audience addressed in both texts (e.g., Consumers, B2B Customers, Investors, Policymakers).",
      "summary": "Summarize any shift in the target audience. Note 'No significant change' if applicable."
    }
  },
  "ira_alignment": {
    "alignment_detected": false,
    "evidence_type": "none|explicit_mention|tax_code|conceptual_language",
    "specific_evidence": ["List specific terms like 'Inflation Reduction Act', '45Q', 'ITC', 'domestic content' if found."],
    "reasoning": "Provide your reasoning for the alignment assessment."
  },
  "overall_assessment": {
    "change_level": "none|minor|moderate|major",
    "confidence": 0.0,
    "synthesis_reasoning": "Synthesize your findings from the analyses above to justify the overall change_level."
  }
}`

// BuildPrompt embeds both texts, each cut to limit runes.
func BuildPrompt(pre, post string, limit int) Prompt {
	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userTemplate, utils.TruncateRunes(pre, limit), utils.TruncateRunes(post, limit)),
	}
}
