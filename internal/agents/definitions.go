// Package agents runs domain-specialist analyses of contract text. One
// parameterized Agent type covers every domain; variants differ only by
// their Definition.
package agents

import "github.com/JaimeStill/covenant/internal/prompts"

// Domain agent names.
const (
	Legal      = "legal"
	Finance    = "finance"
	Compliance = "compliance"
	Operations = "operations"
)

// Role describes what a domain agent looks for.
type Role struct {
	Objective string   `json:"objective"`
	Focus     []string `json:"focus"`
	RiskType  string   `json:"risk_type"`
}

// Definition binds a domain name to its display label, prompt stage, and role.
type Definition struct {
	Name    string
	Display string
	Stage   prompts.Stage
	Role    Role
}

// Definitions is the static table of domain agents.
var Definitions = []Definition{
	{
		Name:    Legal,
		Display: "Legal",
		Stage:   prompts.StageLegal,
		Role: Role{
			Objective: "Assess legal enforceability and liability",
			Focus:     []string{"liability", "indemnity", "termination", "jurisdiction"},
			RiskType:  "Legal Risk",
		},
	},
	{
		Name:    Finance,
		Display: "Finance",
		Stage:   prompts.StageFinance,
		Role: Role{
			Objective: "Identify financial exposure and obligations",
			Focus:     []string{"payment", "pricing", "penalty", "tax", "invoice"},
			RiskType:  "Financial Risk",
		},
	},
	{
		Name:    Compliance,
		Display: "Compliance",
		Stage:   prompts.StageCompliance,
		Role: Role{
			Objective: "Ensure regulatory and policy compliance",
			Focus:     []string{"regulation", "audit", "gdpr", "iso", "policy"},
			RiskType:  "Compliance Risk",
		},
	},
	{
		Name:    Operations,
		Display: "Operations",
		Stage:   prompts.StageOperations,
		Role: Role{
			Objective: "Validate operational feasibility and SLAs",
			Focus:     []string{"sla", "uptime", "delivery", "support"},
			RiskType:  "Operational Risk",
		},
	},
}

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Names returns every domain agent name in table order.
func Names() []string {
	names := make([]string, len(Definitions))
	for i, d := range Definitions {
		names[i] = d.Name
	}
	return names
}
