package notes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// promptAllowListPreview caps how many allow-list values are quoted in the prompt
const promptAllowListPreview = 10

const systemPromptTemplate = `You are an expert sales assistant that extracts structured information from sales conversations and notes.
Your task is to analyze the transcript and fill in the fields of the schema with the most relevant information for the Customer Success team.

Instructions:

Output only the value for each field (no extra phrasing like "The X is...").

If multiple values apply, list them separated by commas.

If information is missing, leave string fields empty and set integer fields to -1.

Do not add explanations, assumptions, or commentary outside the schema.

Maintain the exact field names from the schema.

Focus on capturing information that will help Customer Success:
- Understand implementation complexity and risks
- Plan appropriate onboarding strategies
- Identify potential challenges and mitigation strategies
- Prepare for technical requirements and integrations
- Understand organizational dynamics and decision-making processes
- Plan realistic timelines and resource allocation

CONTEXT: TODAY IS %s`

// BuildSystemPrompt renders the extraction instructions, including the
// accumulated record so the model only reports new information.
func BuildSystemPrompt(s *Schema, accumulated Record, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, systemPromptTemplate, today.Format("2006-01-02"))

	if len(accumulated) == 0 {
		return b.String()
	}

	data, err := json.MarshalIndent(accumulated, "", "  ")
	if err != nil {
		return b.String()
	}

	b.WriteString("\n\nCURRENT ACCUMULATED DATA:\n")
	b.Write(data)
	b.WriteString(`

IMPORTANT: Use the current data as a baseline and only update fields with NEW information from the transcript.
- If a field already has meaningful data, only update it if the transcript provides MORE SPECIFIC or CORRECTED information
- If a field is empty or contains placeholder values, fill it with relevant information from the transcript
- Preserve existing data unless the transcript explicitly contradicts or provides better information
- For numeric fields, only update if the transcript provides a specific number (use -1 otherwise, and 0 only when explicitly mentioned)
`)

	for _, f := range s.Fields {
		if !f.AllowList {
			continue
		}
		fmt.Fprintf(&b, "- For the '%s' field: Only update if the transcript explicitly mentions one of the allowed values. If none is mentioned or the mention is unclear, leave the field empty to preserve existing data.\n", f.Name)
		preview := s.AllowList
		more := ""
		if len(preview) > promptAllowListPreview {
			preview = preview[:promptAllowListPreview]
			more = "..."
		}
		fmt.Fprintf(&b, "- Available %s options: %s%s\n", f.Label, strings.Join(preview, ", "), more)
	}

	return b.String()
}
