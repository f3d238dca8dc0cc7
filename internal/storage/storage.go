// Package storage picks an allocation strategy for every declared
// variable. Decisions combine recorded escape facts, type sizes from the
// layout engine and the frontend's lifetime estimate; the rule order is
// fixed and the decision is a pure function of its inputs.
package storage

import (
	"chim/internal/ast"
	"chim/internal/layout"
)

// Strategy enumerates where a variable lives.
type Strategy uint8

const (
	// StrategyStack places the variable in the function frame.
	StrategyStack Strategy = iota
	// StrategyHeap places the variable behind a heap allocation.
	StrategyHeap
	// StrategyRadixPool places the variable in the tiered radix pool.
	StrategyRadixPool
)

// String returns the strategy name used in reports.
func (s Strategy) String() string {
	switch s {
	case StrategyStack:
		return "stack"
	case StrategyHeap:
		return "heap"
	case StrategyRadixPool:
		return "radix_pool"
	default:
		return "<strategy?>"
	}
}

// shortLivedLimit is the lifetime below which values always stay on the
// stack, in instructions.
const shortLivedLimit = 100

// Config holds the decision thresholds.
type Config struct {
	// StackThreshold is the largest size kept on the stack, in bytes.
	StackThreshold int
	// PoolThreshold is the largest size admitted to the pool, in bytes.
	PoolThreshold int
	// PoolLifetimeThreshold is the longest lifetime admitted to the
	// pool, in instructions.
	PoolLifetimeThreshold int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		StackThreshold:        4096,
		PoolThreshold:         4096,
		PoolLifetimeThreshold: 1000,
	}
}

// normalized fills zero fields with defaults so Config{} behaves like
// DefaultConfig().
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.StackThreshold <= 0 {
		c.StackThreshold = d.StackThreshold
	}
	if c.PoolThreshold <= 0 {
		c.PoolThreshold = d.PoolThreshold
	}
	if c.PoolLifetimeThreshold <= 0 {
		c.PoolLifetimeThreshold = d.PoolLifetimeThreshold
	}
	return c
}

// Oracle answers whether a variable must live on the heap. Escape fact
// stores implement it; the decider treats it as opaque.
type Oracle interface {
	ShouldAllocateOnHeap(name, context string) bool
}

// Decider chooses allocation strategies. It owns the layout engine and
// oracle it was built with.
type Decider struct {
	oracle  Oracle
	layouts *layout.Engine
	cfg     Config
}

// NewDecider creates a Decider. A nil oracle reports no escapes; a zero
// Config takes the defaults.
func NewDecider(oracle Oracle, layouts *layout.Engine, cfg Config) *Decider {
	return &Decider{
		oracle:  oracle,
		layouts: layouts,
		cfg:     cfg.normalized(),
	}
}

// Config returns the thresholds in effect.
func (d *Decider) Config() Config {
	if d == nil {
		return DefaultConfig()
	}
	return d.cfg
}

// Decide picks the strategy for one variable. Rules apply in fixed
// order; the first match wins.
func (d *Decider) Decide(name, typeName string, init *ast.Expr, context string, lifetime int) Strategy {
	if d == nil {
		return StrategyStack
	}

	// Short-lived values stay on the stack no matter what.
	if lifetime < shortLivedLimit {
		return StrategyStack
	}

	size := d.TypeSize(typeName)

	if lifetime < d.cfg.PoolLifetimeThreshold && size <= d.cfg.PoolThreshold && !d.escapes(name, context) {
		return StrategyRadixPool
	}

	if d.escapes(name, context) {
		return StrategyHeap
	}

	if size > d.cfg.StackThreshold {
		return StrategyHeap
	}

	if hasAddressTaken(init) {
		return StrategyHeap
	}

	if d.layouts.Recursive(typeName) {
		return StrategyHeap
	}

	return StrategyStack
}

// TypeSize returns the size of a type name in bytes. Analyzed structs
// resolve through the layout engine; unknown names degrade to pointer
// size.
func (d *Decider) TypeSize(typeName string) int {
	if d == nil || d.layouts == nil {
		size, _ := fallbackTypeInfo(typeName)
		return size
	}
	return d.layouts.SizeOf(typeName)
}

func (d *Decider) escapes(name, context string) bool {
	if d.oracle == nil {
		return false
	}
	return d.oracle.ShouldAllocateOnHeap(name, context)
}

// fallbackTypeInfo covers the no-engine case with the builtin widths.
func fallbackTypeInfo(typeName string) (size, align int) {
	switch typeName {
	case "int", "float":
		return 4, 4
	case "bool":
		return 1, 1
	case "string":
		return 16, 8
	default:
		return 8, 8
	}
}
