package main

import (
	"fmt"
	"strconv"
	"strings"

	id "github.com/lin871229/lottery-app-v4/pkg/domain"
)

// pick is one requested draw: CATEGORY:DISTRICT[:COUNT].
type pick struct {
	Category id.ServiceCategory
	District string
	Count    int
}

func parsePick(s string) (pick, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return pick{}, fmt.Errorf("invalid pick %q: want CATEGORY:DISTRICT[:COUNT]", s)
	}

	category, err := id.ParseServiceCategory(parts[0])
	if err != nil {
		return pick{}, fmt.Errorf("invalid pick %q: %w", s, err)
	}
	district := strings.TrimSpace(parts[1])
	if district == "" {
		return pick{}, fmt.Errorf("invalid pick %q: district is required", s)
	}

	count := 1
	if len(parts) == 3 {
		count, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || count < 1 {
			return pick{}, fmt.Errorf("invalid pick %q: count must be a positive integer", s)
		}
	}
	return pick{Category: category, District: district, Count: count}, nil
}

func parsePicks(values []string) ([]pick, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one --pick is required")
	}
	picks := make([]pick, 0, len(values))
	for _, v := range values {
		p, err := parsePick(v)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, nil
}
