// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the ODE analysis driver: it serializes a
// neuron's shapes and ODE rows into the external symbolic solver's
// request/response protocol, invokes a Transport, and folds
// the reply back into the IR. The transport is modeled as a sum type
// (available process | unavailable) so the driver never embeds
// assumptions about how the solver process is reached.
package solver

// DynamicsEntry is one row of the request's "dynamics" list: a shape or
// state-ODE definition. The row carries no declared unit; literal unit
// suffixes inside Expression and InitialValue are kept as printed.
type DynamicsEntry struct {
	Name         string `json:"name"`
	Expression   string `json:"expression"`
	InitialValue string `json:"initial_value"`
	Order        int    `json:"order"`
}

// ParameterEntry is one row of the request's "parameters" list.
type ParameterEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Options carries solver-wide numeric configuration.
type Options struct {
	SimTimeResolutionMs float64 `json:"sim_time_resolution"`
}

// Request is the structured exchange's request half.
type Request struct {
	Dynamics   []DynamicsEntry  `json:"dynamics"`
	Parameters []ParameterEntry `json:"parameters"`
	Options    Options          `json:"options"`
}

// Status is the reply's outcome classification.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// SolverKind distinguishes an analytic closed-form solution from a
// numeric-integration fallback.
type SolverKind string

const (
	SolverAnalytical SolverKind = "analytical"
	SolverNumeric    SolverKind = "numeric"
)

// Reply is the structured exchange's response half.
type Reply struct {
	Status            Status               `json:"status"`
	Solver            SolverKind           `json:"solver,omitempty"`
	Propagator        map[string][]float64 `json:"propagator,omitempty"`
	UpdateExpressions map[string]string    `json:"update_expressions,omitempty"`
	InitialValues     map[string]string    `json:"initial_values,omitempty"`
	StateVariables    []string             `json:"state_variables,omitempty"`
	// Stiff is an informational stiffness-test result.
	Stiff bool `json:"stiff,omitempty"`
}
