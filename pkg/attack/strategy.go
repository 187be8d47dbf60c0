// Package attack ranks nodes for removal and simulates attacks, sampling the
// robustness curve as nodes are taken out.
package attack

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy names a node-removal ordering
type Strategy string

// Supported strategies
const (
	Random      Strategy = "random"
	Degree      Strategy = "degree"
	Betweenness Strategy = "betweenness"
	PageRank    Strategy = "pagerank"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names
var ErrUnknownStrategy = errors.New("unknown attack strategy")

var legacyNames = map[string]Strategy{
	"random_attack":               Random,
	"degree_targeted_attack":      Degree,
	"betweenness_targeted_attack": Betweenness,
	"pagerank_targeted_attack":    PageRank,
}

// Strategies returns every supported strategy
func Strategies() []Strategy {
	return []Strategy{Random, Degree, Betweenness, PageRank}
}

// ParseStrategy accepts the short names and the long *_attack names
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch s := Strategy(key); s {
	case Random, Degree, Betweenness, PageRank:
		return s, nil
	}
	if s, ok := legacyNames[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// LegacyName returns the long name used in result documents
func (s Strategy) LegacyName() string {
	if s == Random {
		return "random_attack"
	}
	return string(s) + "_targeted_attack"
}

// Targeted reports whether the strategy ranks by a centrality score
func (s Strategy) Targeted() bool {
	return s != Random
}
