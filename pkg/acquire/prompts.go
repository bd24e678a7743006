package acquire

import (
	"bytes"
	"text/template"
)

const selfCorrectInstruction = "Your previous answer was too short or missing logical steps. " +
	"Please rewrite the answer as a concise paragraph (3-6 sentences) " +
	"that includes clear multi-step reasoning and explicitly links claims to evidence."

var refineTemplate = template.Must(template.New("refine").Parse(`Previous answer:
{{.Previous}}

Please improve this answer. Provide a concise, well-structured paragraph that directly answers the prompt below and includes explicit multi-step reasoning.

PROMPT:
{{.Prompt}}

Return only the improved answer text.`))

var correctionTemplate = template.Must(template.New("correction").Parse(
	`{{.Prompt}}

SELF-CORRECTION INSTRUCTION: {{.Instruction}} Return only the corrected answer (no JSON or extra commentary).`))

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	// Templates are static and only read string fields.
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

func refinePrompt(previous, prompt string) string {
	return render(refineTemplate, struct{ Previous, Prompt string }{previous, prompt})
}

func correctionPrompt(prompt string) string {
	return render(correctionTemplate, struct{ Prompt, Instruction string }{prompt, selfCorrectInstruction})
}
