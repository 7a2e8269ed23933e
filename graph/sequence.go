// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package graph

import (
	"slices"
)

// Groups returns modules in dependency-respecting batches.
// Every dependency of a module in batch k is in a batch before k.
// Modules in a batch are sorted by identity.
func Groups(g Graph) ([][]Module, error) {
	mods := slices.Clone(g.Modules())
	slices.Sort(mods)
	index := make(map[Module]int, len(mods))
	for i, m := range mods {
		if _, ok := index[m]; ok {
			return nil, &InvalidGraphError{Kind: ErrDuplicateModule, Module: m}
		}
		index[m] = i
	}

	// pending[i] is the number of deps of mods[i] not yet placed.
	pending := make([]int, len(mods))
	deps := make([][]int, len(mods))
	dependents := make([][]int, len(mods))
	for i, m := range mods {
		for _, d := range dedup(g.DirectDeps(m)) {
			j, ok := index[d]
			if !ok {
				return nil, &InvalidGraphError{Kind: ErrUnknownModule, Module: m, Dep: d}
			}
			if i == j {
				return nil, &CycleError{Path: []Module{m, m}}
			}
			pending[i]++
			deps[i] = append(deps[i], j)
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range mods {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}
	var groups [][]Module
	placed := 0
	for len(ready) > 0 {
		// index order is identity order.
		slices.Sort(ready)
		group := make([]Module, 0, len(ready))
		var next []int
		for _, i := range ready {
			group = append(group, mods[i])
			for _, j := range dependents[i] {
				pending[j]--
				if pending[j] == 0 {
					next = append(next, j)
				}
			}
		}
		placed += len(ready)
		groups = append(groups, group)
		ready = next
	}
	if placed != len(mods) {
		return nil, &CycleError{Path: findCycle(mods, deps, pending)}
	}
	return groups, nil
}

// Sequence returns the flattened Groups.
func Sequence(g Graph) ([]Module, error) {
	groups, err := Groups(g)
	if err != nil {
		return nil, err
	}
	var order []Module
	for _, group := range groups {
		order = append(order, group...)
	}
	return order, nil
}

// findCycle returns one cycle among the unplaced modules, visiting
// modules and deps in index order so the witness is stable.
func findCycle(mods []Module, deps [][]int, pending []int) []Module {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(mods))
	var stack []int
	var cycle []int

	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = gray
		stack = append(stack, u)
		next := slices.Clone(deps[u])
		slices.Sort(next)
		for _, v := range next {
			if pending[v] == 0 {
				continue
			}
			switch color[v] {
			case white:
				if visit(v) {
					return true
				}
			case gray:
				k := slices.Index(stack, v)
				cycle = append(slices.Clone(stack[k:]), v)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		return false
	}

	for i := range mods {
		if pending[i] == 0 || color[i] != white {
			continue
		}
		if visit(i) {
			break
		}
	}
	path := make([]Module, 0, len(cycle))
	for _, i := range cycle {
		path = append(path, mods[i])
	}
	return path
}
