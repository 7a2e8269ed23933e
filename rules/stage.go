// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rules expands module dependency edges into build rules
// for each stage of the verification pipeline.
package rules

// Stage is a pipeline phase producing one kind of artifact per module.
type Stage string

// Pipeline stages.
const (
	// Marker only asserts the module exists.
	Marker Stage = "marker"
	// SyntaxCheck is the result of parsing the module.
	SyntaxCheck Stage = "syntax-check"
	// VerificationCheck is the result of verifying the module alone.
	VerificationCheck Stage = "verification-check"
	// TranspiledCS is the C# translation.
	TranspiledCS Stage = "transpiled-cs"
	// CompileLogCheck is the linearity check log.
	CompileLogCheck Stage = "compile-log-check"
	// TranspiledSource is the C++ translation.
	TranspiledSource Stage = "transpiled-source"
	// VerificationReport is verified with all dependencies.
	VerificationReport Stage = "verification-report"
	// SyntaxReport is syntax checked with all dependencies.
	SyntaxReport Stage = "syntax-report"
	// CompletionMarker marks the module fully done.
	CompletionMarker Stage = "completion-marker"
	// CompileLogReport aggregates compile logs of all dependencies.
	CompileLogReport Stage = "compile-log-report"
	// CompiledObject is the object file.
	CompiledObject Stage = "compiled-object"
)

var suffixes = map[Stage]string{
	Marker:             ".dummydep",
	SyntaxCheck:        ".synchk",
	VerificationCheck:  ".verchk",
	TranspiledCS:       ".cs",
	CompileLogCheck:    ".lc",
	TranspiledSource:   ".cpp",
	VerificationReport: ".verified",
	SyntaxReport:       ".syntax",
	CompletionMarker:   ".okay",
	CompileLogReport:   ".lcreport",
	CompiledObject:     ".o",
}

// Stages returns the pipeline's stage roster.
func Stages() []Stage {
	return []Stage{
		Marker,
		SyntaxCheck,
		VerificationCheck,
		TranspiledCS,
		CompileLogCheck,
		TranspiledSource,
		VerificationReport,
		SyntaxReport,
		CompletionMarker,
		CompileLogReport,
		CompiledObject,
	}
}

// Suffix returns the file suffix of the stage's artifact.
// Stages outside the roster use "." followed by the stage name.
func (s Stage) Suffix() string {
	if suffix, ok := suffixes[s]; ok {
		return suffix
	}
	return "." + string(s)
}
