package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

const DefaultName = "bench2drive"

var registry = map[string]Evaluator{
	"bench2drive": Bench2DriveEvaluator{},
	"leaderboard": LeaderboardEvaluator{},
}

// Names returns the registered evaluator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Select(name string) (Evaluator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultName
	}
	if ev, ok := registry[key]; ok {
		return ev, nil
	}
	return nil, fmt.Errorf("unsupported evaluator %q (available: %s)", name, strings.Join(Names(), ", "))
}
