package prompts

const classifyInstructions = `You are a contract classification model performing zero-shot classification.

Read the contract text and score how well it matches each candidate contract type. Base the scores on the parties, the subject matter, and the obligations described, not on the document title alone.`

const legalInstructions = `You are a Legal Analysis Agent.

Analyze the following contract and identify:
- Governing law
- Termination clauses
- Liability risks
- Intellectual property ownership
- Dispute resolution mechanisms

Return a clear, concise legal analysis.`

const financeInstructions = `You are a Finance Analysis Agent.

Analyze the contract and extract:
- Payment terms
- Contract value
- Fees, penalties, or late charges
- Renewal or termination costs

Return a concise financial summary.`

const complianceInstructions = `You are a Compliance Analysis Agent.

Check the contract for:
- Data protection clauses
- Privacy and GDPR compliance
- Regulatory or statutory obligations
- Confidentiality requirements

Return a concise compliance assessment.`

const operationsInstructions = `You are an Operations Analysis Agent.

Identify:
- Deliverables or services
- Timelines and deadlines
- Responsibilities of each party
- Operational risks or dependencies

Return a concise operational analysis.`

const transcribeInstructions = `You are transcribing a scanned contract page.

Reproduce all legible text on the page in reading order. Preserve clause numbering and headings. Mark illegible passages with [illegible].`

var instructions = map[Stage]string{
	StageClassify:   classifyInstructions,
	StageLegal:      legalInstructions,
	StageFinance:    financeInstructions,
	StageCompliance: complianceInstructions,
	StageOperations: operationsInstructions,
	StageTranscribe: transcribeInstructions,
}

// Instructions returns the built-in instructions for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
