package prompts

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "scores": {
    "<label>": <number between 0 and 1>
  }
}

Field constraints:
- scores: One entry for every candidate label listed in the prompt, using
  the label text exactly as given. Scores should sum to approximately 1.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never invent labels outside the candidate list`

const analysisSpec = `Output format:
- One finding per line, each line starting with "- "
- State each risk or obligation plainly in a single sentence
- No preamble, headings, or closing summary`

const transcribeSpec = `Output format:
- Plain text only, no markdown
- Keep the original line breaks between paragraphs`

var specs = map[Stage]string{
	StageClassify:   classifySpec,
	StageLegal:      analysisSpec,
	StageFinance:    analysisSpec,
	StageCompliance: analysisSpec,
	StageOperations: analysisSpec,
	StageTranscribe: transcribeSpec,
}

// Spec returns the fixed output specification for a stage.
// Specifications are not overridable.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
