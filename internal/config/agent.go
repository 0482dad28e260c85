package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentProviderName = "COVENANT_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "COVENANT_AGENT_BASE_URL"
	EnvAgentToken        = "COVENANT_AGENT_TOKEN"
	EnvAgentDeployment   = "COVENANT_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "COVENANT_AGENT_API_VERSION"
	EnvAgentAuthType     = "COVENANT_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "COVENANT_AGENT_MODEL_NAME"
)

// Decoding defaults applied per protocol when the model config leaves them
// unset. Agent analysis runs greedy so repeated runs agree.
var decodingDefaults = map[string]map[string]any{
	"chat":   {"temperature": 0.0, "top_p": 1.0, "max_tokens": 512},
	"vision": {"temperature": 0.0, "top_p": 1.0, "max_tokens": 2048},
}

// FinalizeAgent applies the three-phase finalize pattern to a go-agents AgentConfig:
// defaults from go-agents DefaultAgentConfig, environment variable overrides, and validation.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Model == nil {
		c.Model = gaconfig.DefaultModelConfig()
	}
	if c.Model.Capabilities == nil {
		c.Model.Capabilities = make(map[string]map[string]any)
	}

	for protocol, options := range decodingDefaults {
		caps := c.Model.Capabilities[protocol]
		if caps == nil {
			caps = make(map[string]any, len(options))
			c.Model.Capabilities[protocol] = caps
		}
		for key, v := range options {
			if _, ok := caps[key]; !ok {
				caps[key] = v
			}
		}
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
