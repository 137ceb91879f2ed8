package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

const summarisationSystemPrompt = "You are a neutral summarisation agent. You have observed a structured debate " +
	"among domain experts about classifying a piece of text.\n\n" +
	"Produce a concise synthesis that covers:\n" +
	"1. The main arguments from each side\n" +
	"2. Points of consensus among the experts\n" +
	"3. Unresolved disagreements\n\n" +
	"Be factual and impartial. Do not add your own classification."

const deliberationInstructions = "You have seen the initial assessments from all experts on this input. " +
	"You MUST:\n" +
	"(i) Engage with at least one other expert's reasoning — agree or disagree " +
	"with supporting rationale.\n" +
	"(ii) Revise your own classification if you find their counter-arguments compelling.\n" +
	"(iii) Re-evaluate the input through the interpretive lens of at least one other expert's " +
	"perspective, considering both intent and impact.\n\n" +
	"Then provide your revised assessment."

const jsonResponseBlock = "\n## Your Assessment\n\n" +
	"Provide your classification. Respond ONLY with valid JSON:\n" +
	"```json\n" +
	"{\n" +
	"  \"label\": \"<your classification>\",\n" +
	"  \"confidence\": <0.0-1.0>,\n" +
	"  \"reasoning\": \"<your full reasoning>\",\n" +
	"  \"key_factors\": [\"<factor 1>\", \"<factor 2>\"],\n" +
	"  \"dissent_notes\": \"<optional rebuttal against other experts>\"\n" +
	"}\n" +
	"```"

func (e *Engine) buildPersonaPrompt(p persona.Persona, index int, text string, primary *classifier.Result, labels []string, prior [][]persona.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Persona\n\n%s: %s\n\n", p.Name, p.Role)
	fmt.Fprintf(&sb, "## Input to Classify\n\n%s\n\n", text)
	fmt.Fprintf(&sb, "## Available Labels\n\n%s\n\n", strings.Join(labels, ", "))

	if e.config.Mode == ModeAdversarial {
		stance := "Prosecution"
		if index%2 == 1 {
			stance = "Defense"
		}
		fmt.Fprintf(&sb, "## Adversarial Role\n\nYou are assigned the **%s** side. "+
			"Argue this stance rigorously while remaining truthful to the evidence.\n\n", stance)
	}

	e.writePrimaryResult(&sb, primary)

	if len(prior) > 0 {
		sb.WriteString("## Previous Assessments\n")
		for idx, round := range prior {
			fmt.Fprintf(&sb, "\n### Round %d\n", idx+1)
			writeRoundOpinions(&sb, round)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(jsonResponseBlock)
	return sb.String()
}

func (e *Engine) buildDeliberationPrompt(p persona.Persona, text string, primary *classifier.Result, labels []string, prior [][]persona.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Persona\n\n%s: %s\n\n", p.Name, p.Role)
	fmt.Fprintf(&sb, "## Input to Classify\n\n%s\n\n", text)
	fmt.Fprintf(&sb, "## Available Labels\n\n%s\n\n", strings.Join(labels, ", "))

	e.writePrimaryResult(&sb, primary)

	if len(prior) > 0 {
		sb.WriteString("## Initial Expert Opinions\n")
		writeRoundOpinions(&sb, prior[0])
		for idx := 1; idx < len(prior); idx++ {
			fmt.Fprintf(&sb, "\n## Revised Opinions (Round %d)\n", idx+1)
			writeRoundOpinions(&sb, prior[idx])
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Deliberation Instructions\n\n%s\n", deliberationInstructions)
	sb.WriteString(jsonResponseBlock)
	return sb.String()
}

func (e *Engine) writePrimaryResult(sb *strings.Builder, primary *classifier.Result) {
	if !e.config.IncludePrimaryResult || primary == nil {
		return
	}
	confidenceSuffix := ""
	if e.config.IncludeConfidence {
		confidenceSuffix = fmt.Sprintf(" (confidence: %.2f)", primary.Confidence)
	}
	fmt.Fprintf(sb, "## Primary Classifier Result\n\nLabel: %s%s\n"+
		"Note: This was flagged as low-confidence and escalated to you.\n\n", primary.Label, confidenceSuffix)
}

func writeRoundOpinions(sb *strings.Builder, round []persona.Response) {
	for _, r := range round {
		fmt.Fprintf(sb, "**%s**: %s (confidence: %.2f)\nReasoning: %s\n", r.PersonaName, r.Label, r.Confidence, r.Reasoning)
	}
}

// summarise compiles the full round history and asks a neutral
// summariser (no persona stance) for a synthesis. It uses the first
// configured persona's model.
func (e *Engine) summarise(ctx context.Context, text string, labels []string, rounds [][]persona.Response) (string, int, float64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Input\n\n%s\n\n", text)
	fmt.Fprintf(&sb, "## Labels\n\n%s\n\n", strings.Join(labels, ", "))

	for idx, round := range rounds {
		heading := "Initial Expert Opinions"
		if idx > 0 {
			heading = fmt.Sprintf("Revised Opinions (Round %d)", idx+1)
		}
		fmt.Fprintf(&sb, "## %s\n", heading)
		writeRoundOpinions(&sb, round)
		sb.WriteString("\n")
	}
	sb.WriteString("Produce your synthesis now. Focus on arguments, consensus, and disagreements.")

	completion, err := e.client.Complete(ctx, e.personas[0].Model, summarisationSystemPrompt, sb.String(), 0)
	if err != nil {
		return "", 0, 0, fmt.Errorf("debate: summarisation: %w", err)
	}
	return completion.Content, completion.Tokens, completion.CostUSD, nil
}
