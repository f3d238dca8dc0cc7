package main

import (
	"fmt"
	"os"

	"chim/internal/layout"
	"chim/internal/project"
)

// resolveManifest turns a path argument into a manifest file path. A
// directory argument searches upward for chim.toml, so commands work
// from anywhere inside a unit.
func resolveManifest(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	st, err := os.Stat(arg)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return arg, nil
	}
	path, ok, err := project.FindChimToml(arg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no %s found in %s or any parent", project.ManifestName, arg)
	}
	return path, nil
}

func loadUnitArg(args []string) (*project.Unit, error) {
	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	path, err := resolveManifest(arg)
	if err != nil {
		return nil, err
	}
	return project.Load(path)
}

// buildEngine analyzes every declared struct so size queries resolve.
func buildEngine(unit *project.Unit) *layout.Engine {
	eng := layout.New(unit.Target)
	for _, s := range unit.Structs {
		if s.ValueType {
			eng.MarkValueType(s.Name)
		}
	}
	for _, s := range unit.Structs {
		eng.AnalyzeStruct(s.Name, s.Fields)
		if s.ValueType {
			eng.ApplySIMDAlignment(s.Name)
		}
	}
	return eng
}
