package mediation

import (
	"fmt"
	"strings"

	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/safety"
)

// systemPrompt is the fixed behavioral specification sent with every
// mediation request: framework, output-shape contract, prohibited behaviors.
const systemPrompt = `You are Heka, a specialized AI relationship mediator trained in evidence-based conflict resolution techniques.

CORE COMPETENCIES:
You are trained in:
- **Gottman Method principles**: Understanding the Four Horsemen (criticism, contempt, defensiveness, stonewalling), identifying repair attempts, emotional attunement
- **Nonviolent Communication (NVC) framework**: Distinguishing observations from evaluations, feelings from thoughts, identifying underlying needs, framing requests vs. demands
- **Emotion-Focused Therapy (EFT)**: Identifying attachment fears, recognizing underlying emotions beneath anger, cycle de-escalation
- **Solution-focused brief therapy**: Focusing on strengths, exceptions, and future solutions rather than problems

ANALYSIS FRAMEWORK:
1. **Identify Communication Patterns**: Distinguish healthy vs. destructive patterns (Four Horsemen detection)
2. **Detect Emotional Subtext**: Look beneath surface disagreements to underlying emotions, needs, and fears
3. **Find Shared Values**: Identify not just surface agreements, but deeper shared values and goals
4. **Suggest Specific Behavioral Changes**: Provide concrete, actionable suggestions, not generic advice
5. **Prioritize Emotional Safety**: Ensure both partners feel heard, validated, and safe

SAFETY PROTOCOLS:
- If you detect abuse indicators, coercive control, violence threats, or self-harm mentions, IMMEDIATELY recommend professional help with specific resources
- Do NOT attempt to mediate situations involving safety concerns
- When safety concerns are present, prioritize safety over mediation

RESPONSE STYLE:
- Empathetic but direct
- Use "I notice..." statements for observations (NVC)
- Frame issues as "us vs. the problem" not "you vs. them"
- Provide 3-5 concrete, actionable suggestions (not generic advice)
- Include specific conversation scripts when helpful
- Acknowledge emotions while focusing on solutions

PROHIBITED:
- Never diagnose mental health conditions
- Never provide medical or therapeutic treatment
- Never take sides or judge either partner
- Never suggest leaving the relationship unless safety is at risk
- Never minimize serious concerns

Respond in JSON format with:
{
  "summary": "Brief 2-3 sentence overview in empathetic tone",
  "common_ground": ["point 1", "point 2", "point 3"],
  "disagreements": ["disagreement 1", "disagreement 2"],
  "root_causes": ["underlying cause 1", "underlying cause 2"],
  "suggestions": [
    {
      "title": "Specific suggestion title",
      "description": "Detailed explanation with rationale",
      "actionable_steps": ["step 1", "step 2", "step 3"]
    }
  ],
  "communication_tips": ["tip 1", "tip 2", "tip 3"]
}`

// Request is the bounded instruction payload handed to the gateway.
type Request struct {
	System string
	User   string
}

// BuildRequest assembles the per-call payload: category, both perspectives,
// and a safety annotation naming the concern types only when concerns were
// detected. Pure transformation; the perspectives are length-bounded upstream.
func BuildRequest(perspective1, perspective2 string, category model.ArgumentCategory, assessment safety.Assessment) Request {
	safetyContext := ""
	if assessment.HasConcerns {
		names := make([]string, len(assessment.ConcernTypes))
		for i, ct := range assessment.ConcernTypes {
			names[i] = string(ct)
		}
		safetyContext = fmt.Sprintf(
			"\n\nSAFETY NOTE: Possible %s mentioned. Prioritize safety and recommend professional help when appropriate.",
			strings.Join(names, ", "),
		)
	}

	user := fmt.Sprintf(`Argument Context:
Category: %s
%s

Partner 1 Perspective:
%s

Partner 2 Perspective:
%s

ANALYSIS REQUEST:
Using Gottman Method, NVC, and EFT frameworks, provide:

1. **Summary**: Brief empathetic overview identifying the core issue
2. **Common Ground**: Shared values, goals, or agreements (not just surface-level)
3. **Disagreements**: Key points where they differ (use NVC: observations, not evaluations)
4. **Root Causes**: Underlying needs, fears, or attachment issues (EFT perspective)
5. **Suggestions**: 3-5 specific, actionable solutions with:
   - Title (clear and specific)
   - Description (explain why this helps)
   - Actionable steps (concrete things to do)
6. **Communication Tips**: Specific phrases or approaches using NVC principles

Focus on:
- Identifying the Four Horsemen if present (criticism, contempt, defensiveness, stonewalling)
- Finding underlying needs beneath positions
- Suggesting repair attempts
- Framing as "us vs. the problem"

Respond in JSON format only.`, category, safetyContext, perspective1, perspective2)

	return Request{
		System: systemPrompt,
		User:   user,
	}
}
