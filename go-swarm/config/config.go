package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrBadAgent      = errors.New("bad agent argument")
)

// Params describes the shared file and the bandwidth bounds. It is handed to
// every strategy by value.
type Params struct {
	NumPieces      int `yaml:"num_pieces"`
	BlocksPerPiece int `yaml:"blocks_per_piece"`
	MinUpBW        int `yaml:"min_up_bw"`
	MaxUpBW        int `yaml:"max_up_bw"`
	MaxRound       int `yaml:"max_round"`
}

// Agent is one roster entry: a strategy name repeated Count times.
type Agent struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

type Config struct {
	Params `yaml:",inline"`

	Iters         int     `yaml:"iters"`
	Seed          int64   `yaml:"seed"`
	ParallelRuns  int     `yaml:"parallel_runs"`
	ParallelPeers bool    `yaml:"parallel_peers"`
	LogLevel      string  `yaml:"log_level"`
	Agents        []Agent `yaml:"agents"`
}

func DefaultConfig() *Config {
	return &Config{
		Params: Params{
			NumPieces:      3,
			BlocksPerPiece: 4,
			MinUpBW:        4,
			MaxUpBW:        10,
			MaxRound:       5,
		},
		Iters:        1,
		Seed:         1,
		ParallelRuns: 1,
		LogLevel:     "info",
		Agents: []Agent{
			{Name: "Dummy", Count: 2},
			{Name: "Seed", Count: 1},
		},
	}
}

// Load reads a YAML config from fs on top of the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) ValidateBasic() error {
	switch {
	case cfg.NumPieces <= 0:
		return fmt.Errorf("%w: num_pieces must be positive", ErrInvalidConfig)
	case cfg.BlocksPerPiece <= 0:
		return fmt.Errorf("%w: blocks_per_piece must be positive", ErrInvalidConfig)
	case cfg.MinUpBW < 0:
		return fmt.Errorf("%w: min_up_bw must be non-negative", ErrInvalidConfig)
	case cfg.MaxUpBW < cfg.MinUpBW:
		return fmt.Errorf("%w: max_up_bw %d below min_up_bw %d", ErrInvalidConfig, cfg.MaxUpBW, cfg.MinUpBW)
	case cfg.MaxRound < 0:
		return fmt.Errorf("%w: max_round must be non-negative", ErrInvalidConfig)
	case cfg.Iters <= 0:
		return fmt.Errorf("%w: iters must be positive", ErrInvalidConfig)
	case len(cfg.AgentNames()) == 0:
		return fmt.Errorf("%w: no agents", ErrInvalidConfig)
	}
	for _, a := range cfg.Agents {
		if a.Name == "" || a.Count < 0 {
			return fmt.Errorf("%w: agent %q count %d", ErrInvalidConfig, a.Name, a.Count)
		}
	}
	return nil
}

// AgentNames expands the roster, one name per peer, in registration order.
func (cfg *Config) AgentNames() []string {
	names := []string{}
	for _, a := range cfg.Agents {
		for i := 0; i < a.Count; i++ {
			names = append(names, a.Name)
		}
	}
	return names
}

// ParseAgents parses roster arguments of the form "Name" or "Name,count".
func ParseAgents(args []string) ([]Agent, error) {
	agents := []Agent{}
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		switch len(parts) {
		case 1:
			agents = append(agents, Agent{Name: parts[0], Count: 1})
		case 2:
			count, err := strconv.Atoi(parts[1])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: %s", ErrBadAgent, arg)
			}
			agents = append(agents, Agent{Name: parts[0], Count: count})
		default:
			return nil, fmt.Errorf("%w: %s", ErrBadAgent, arg)
		}
		if agents[len(agents)-1].Name == "" {
			return nil, fmt.Errorf("%w: %s", ErrBadAgent, arg)
		}
	}
	return agents, nil
}

func (p Params) String() string {
	return fmt.Sprintf("num_pieces=%d; blocks_per_piece=%d; min_up_bw=%d; max_up_bw=%d; max_round=%d",
		p.NumPieces, p.BlocksPerPiece, p.MinUpBW, p.MaxUpBW, p.MaxRound)
}
