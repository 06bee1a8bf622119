// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

// Scope is one node in the nested scope tree the symtab builder creates:
// one per block and per compound statement. Lookup walks upward to the
// root.
// The data type lives in ast (alongside the nodes it annotates) so the
// symtab package can build it without ast importing symtab back.
type Scope struct {
	Parent  *Scope
	Kind    BlockKind
	symbols map[string]*Symbol
	order   []string // insertion order, for deterministic diagnostics/printing
}

// NewScope creates a child scope of parent (nil for the root/global scope).
func NewScope(parent *Scope, kind BlockKind) *Scope {
	return &Scope{Parent: parent, Kind: kind, symbols: map[string]*Symbol{}}
}

// Declare installs sym in this scope under sym.Name. It does not check for
// duplicates - that is the symtab builder's job, since "duplicate
// declaration in the same scope" is a diagnostic, not a panic.
func (s *Scope) Declare(sym *Symbol) {
	if _, exists := s.symbols[sym.Name]; !exists {
		s.order = append(s.order, sym.Name)
	}
	s.symbols[sym.Name] = sym
}

// LookupLocal resolves name only within this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Lookup resolves name by walking from this scope up through its
// ancestors, returning the nearest enclosing declaration.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Names returns the symbol names declared directly in this scope, in
// declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns every symbol declared directly in this scope, in
// declaration order.
func (s *Scope) All() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.symbols[n])
	}
	return out
}
