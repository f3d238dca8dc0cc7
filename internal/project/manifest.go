// Package project loads chim.toml unit manifests and lowers them into
// the values the analysis driver consumes: struct declarations for the
// layout engine, variable declarations with escape facts for the
// storage decider, and function bodies or live intervals for the
// register allocator.
package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	// ErrUnitSectionMissing indicates that [unit] is missing in a manifest.
	ErrUnitSectionMissing = errors.New("missing [unit]")
	// ErrUnitNameMissing indicates that [unit].name is missing or empty.
	ErrUnitNameMissing = errors.New("missing [unit].name")
)

type rawManifest struct {
	Unit       rawUnit       `toml:"unit"`
	Target     rawTarget     `toml:"target"`
	Thresholds rawThresholds `toml:"thresholds"`
	Regalloc   rawRegalloc   `toml:"regalloc"`
	Structs    []rawStruct   `toml:"struct"`
	Vars       []rawVar      `toml:"var"`
	Fns        []rawFn       `toml:"fn"`
}

type rawUnit struct {
	Name string `toml:"name"`
}

type rawTarget struct {
	Triple string `toml:"triple"`
}

type rawThresholds struct {
	Stack        int64 `toml:"stack"`
	Pool         int64 `toml:"pool"`
	PoolLifetime int64 `toml:"pool_lifetime"`
}

type rawRegalloc struct {
	Physical int64 `toml:"physical"`
}

type rawStruct struct {
	Name      string     `toml:"name"`
	Fields    []rawField `toml:"fields"`
	ValueType bool       `toml:"value_type"`
}

type rawField struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type rawVar struct {
	Name          string `toml:"name"`
	Type          string `toml:"type"`
	Context       string `toml:"context"`
	Lifetime      int64  `toml:"lifetime"`
	Escapes       bool   `toml:"escapes"`
	CapturedByRef bool   `toml:"captured_by_ref"`
	AddressTaken  bool   `toml:"address_taken"`
}

type rawFn struct {
	Name  string    `toml:"name"`
	VRegs []rawVReg `toml:"vregs"`
	Insts []rawInst `toml:"insts"`
}

type rawVReg struct {
	ID    int64 `toml:"id"`
	Start int64 `toml:"start"`
	End   int64 `toml:"end"`
}

type rawInst struct {
	Op      string   `toml:"op"`
	Dest    string   `toml:"dest"`
	Src     string   `toml:"src"`
	Value   string   `toml:"value"`
	Left    string   `toml:"lhs"`
	Right   string   `toml:"rhs"`
	Cond    string   `toml:"cond"`
	Then    string   `toml:"then"`
	Else    string   `toml:"else"`
	Target  string   `toml:"target"`
	Name    string   `toml:"name"`
	Func    string   `toml:"func"`
	Type    string   `toml:"type"`
	Args    []string `toml:"args"`
	Offset  int64    `toml:"offset"`
	Mutable bool     `toml:"mutable"`
}

// Load reads, validates and lowers a chim.toml unit manifest.
func Load(path string) (*Unit, error) {
	var cfg rawManifest
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("unit") {
		return nil, fmt.Errorf("%s: %w", path, ErrUnitSectionMissing)
	}
	name := normalizeName(cfg.Unit.Name)
	if !meta.IsDefined("unit", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnitNameMissing)
	}
	if !IsValidUnitName(name) {
		return nil, fmt.Errorf("%s: invalid [unit].name %q", path, name)
	}
	unit, err := lower(path, name, &cfg, meta)
	if err != nil {
		return nil, err
	}
	unit.Root = filepath.Dir(path)
	return unit, nil
}
