package fetch

import (
	_ "embed"
	"math/rand"
	"strings"
	"sync"
)

// DefaultUserAgent identifies octocrawl in HTTP requests when no other
// policy is configured.
const DefaultUserAgent = "octocrawl/2.0 (+https://github.com/b3rt1ng/octocrawl)"

//go:embed user_agents.txt
var embeddedAgents string

// AgentPolicy selects the User-Agent header for each request.
// Policies are injected into the Client at construction time; there is no
// process-wide mutable agent state.
type AgentPolicy interface {
	// UserAgent returns the agent string for the next request.
	UserAgent() string
}

// FixedAgent always returns the same agent string.
type FixedAgent string

// UserAgent implements AgentPolicy.
func (a FixedAgent) UserAgent() string {
	return string(a)
}

// RandomAgent picks a uniformly random agent from a list on every request.
type RandomAgent struct {
	mu     sync.Mutex
	agents []string
	rng    *rand.Rand
}

// NewRandomAgent creates a RandomAgent over the given list. An empty list
// falls back to the embedded browser agent list.
func NewRandomAgent(agents []string, seed int64) *RandomAgent {
	if len(agents) == 0 {
		agents = EmbeddedAgents()
	}
	return &RandomAgent{
		agents: agents,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// UserAgent implements AgentPolicy.
func (a *RandomAgent) UserAgent() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.agents[a.rng.Intn(len(a.agents))]
}

// EmbeddedAgents returns the built-in browser User-Agent list.
func EmbeddedAgents() []string {
	var agents []string
	for _, line := range strings.Split(embeddedAgents, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			agents = append(agents, line)
		}
	}
	return agents
}
