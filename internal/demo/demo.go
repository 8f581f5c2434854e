// Package demo owns the identity of demo units and the check that a demo's
// source is acceptable as the body of a generated function.
package demo

import (
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// UnitName returns the name of the callable unit generated for demo i.
// Backends and validators must agree on it; nothing else binds a reference
// to its demo.
func UnitName(i int) string {
	return "Demo" + strconv.Itoa(i)
}

// Validator decides whether a demo source can become a unit.
type Validator interface {
	Validate(index int, source string) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(index int, source string) error

func (f ValidatorFunc) Validate(index int, source string) error { return f(index, source) }

// NopValidator accepts every source.
type NopValidator struct{}

func (NopValidator) Validate(int, string) error { return nil }

// SyntaxError describes why a demo source does not parse. Line and Col are
// relative to the demo source itself, 1-based.
type SyntaxError struct {
	Unit string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Unit, e.Msg)
	}
	return fmt.Sprintf("%s: %d:%d: %s", e.Unit, e.Line, e.Col, e.Msg)
}

// GoValidator parses each demo as the body of `func DemoN() { ... }` with
// go/parser. Only syntax is checked; names are resolved by the Go compiler
// when the generated package is built.
type GoValidator struct{}

const (
	goPrefix     = "package demo\n\nfunc %s() {\n"
	prefixLines  = 3
	goSuffix     = "\n}\n"
	fileNameStub = "demo.go"
)

func (GoValidator) Validate(index int, src string) error {
	unit := UnitName(index)
	text := fmt.Sprintf(goPrefix, unit) + src + goSuffix
	srcLines := strings.Count(src, "\n") + 1

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, fileNameStub, text, parser.SkipObjectResolution)
	if err != nil {
		var list scanner.ErrorList
		if errors.As(err, &list) && len(list) > 0 {
			first := list[0]
			line := first.Pos.Line - prefixLines
			col := first.Pos.Column
			if line < 1 || line > srcLines {
				// ошибка в обёртке: указываем на конец демо
				line, col = srcLines, 0
			}
			return &SyntaxError{Unit: unit, Line: line, Col: col, Msg: first.Msg}
		}
		return &SyntaxError{Unit: unit, Msg: err.Error()}
	}
	if len(file.Decls) != 1 {
		return &SyntaxError{Unit: unit, Msg: "demo source closes the function body early"}
	}
	return nil
}
