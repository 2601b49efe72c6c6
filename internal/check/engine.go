// Package check evaluates extraction results against a set of named
// checks and produces a findings report. Checks inspect decoded metadata
// only; they never reopen or modify the source container.
package check

import (
	"fmt"
	"time"

	"example.com/pdbgate/internal/palm"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Diagnostic is one finding about an extracted container.
type Diagnostic struct {
	Ts       time.Time `json:"ts"`
	File     string    `json:"file"`
	CheckId  string    `json:"checkId"`
	Severity Severity  `json:"severity"`
	Field    string    `json:"field,omitempty"`
	Message  string    `json:"message"`
}

// Report aggregates the findings of one evaluation.
type Report struct {
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Findings []Diagnostic `json:"findings,omitempty"`
}

// Context carries the inputs available to a check.
type Context struct {
	File   string
	Result *palm.Result
}

// Func implements one check. A nil slice means nothing to report.
type Func func(ctx *Context) []Diagnostic

// Engine holds registered checks in registration order.
type Engine struct {
	order  []string
	checks map[string]Func
}

func NewEngine() *Engine {
	e := &Engine{checks: make(map[string]Func)}
	e.RegisterBuiltins()
	return e
}

func (e *Engine) Register(id string, fn Func) error {
	if _, exists := e.checks[id]; exists {
		return fmt.Errorf("check %s already registered", id)
	}
	e.checks[id] = fn
	e.order = append(e.order, id)
	return nil
}

// Run evaluates every registered check and folds the findings into a
// report. Pass is true when no finding reaches ERROR severity.
func (e *Engine) Run(file string, res *palm.Result) Report {
	ctx := &Context{File: file, Result: res}
	var rep Report
	for _, id := range e.order {
		findings := e.checks[id](ctx)
		for _, d := range findings {
			if d.CheckId == "" {
				d.CheckId = id
			}
			if d.Ts.IsZero() {
				d.Ts = time.Now().UTC()
			}
			if d.File == "" {
				d.File = file
			}
			rep.Findings = append(rep.Findings, d)
		}
	}
	rep.Summary.Total = len(rep.Findings)
	for _, d := range rep.Findings {
		switch d.Severity {
		case ERROR:
			rep.Summary.Errors++
		case WARN:
			rep.Summary.Warnings++
		}
	}
	rep.Summary.Pass = rep.Summary.Errors == 0
	return rep
}
