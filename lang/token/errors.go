package token

import (
	"fmt"
	"sort"
	"strings"
)

// maxErrors bounds how many errors a single lex/parse pass accumulates
// before it stops reporting new ones, per the language's error handling
// design (spec.md §4.2).
const maxErrors = 256

// Error is a single lex, parse or type error tied to a source line.
type Error struct {
	Pos Pos
	Msg string
}

func (e Error) Error() string {
	line, _ := e.Pos.LineCol()
	return fmt.Sprintf("[line %d] %s", line, e.Msg)
}

// ErrorList accumulates Errors in the order they are reported and can sort
// them by position before a pipeline stage reports failure, matching the
// "[line N] message" output required by spec.md §6, one per line in
// ascending line order.
type ErrorList []Error

// Add appends a new error unless the list has already reached maxErrors.
func (el *ErrorList) Add(pos Pos, msg string) {
	if len(*el) >= maxErrors {
		return
	}
	*el = append(*el, Error{Pos: pos, Msg: msg})
}

// Sort stable-sorts the list by line, then column.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool {
		li, ci := el[i].Pos.LineCol()
		lj, cj := el[j].Pos.LineCol()
		if li != lj {
			return li < lj
		}
		return ci < cj
	})
}

func (el ErrorList) Error() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Err returns nil if the list is empty, otherwise the list itself sorted by
// position.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	el.Sort()
	return el
}

// Unwrap lets errors.Is/As see through an ErrorList to its individual errors.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
