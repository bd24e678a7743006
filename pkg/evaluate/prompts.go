package evaluate

import (
	"bytes"
	"text/template"
)

type answerPromptData struct {
	Excerpt  string
	Prompt   string
	Guidance string
}

var answerPromptTemplate = template.Must(template.New("answer").Parse(`Context excerpt: {{.Excerpt}}

Task prompt: {{.Prompt}}

Guidance (what golden answer should include): {{.Guidance}}

Provide a concise paragraph answer (3-6 sentences) that addresses the task with clear multi-step reasoning.`))

func buildAnswerPrompt(data answerPromptData) (string, error) {
	var buf bytes.Buffer
	if err := answerPromptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
