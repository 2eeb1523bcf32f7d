package stringsx

import (
	"strings"

	"github.com/meridianhq/meridian-go/errorx"
)

// RegisteredCases keeps track of the cases registered in a switch statement so
// that the default branch can report every value that would have matched.
type RegisteredCases struct {
	cases  []string
	actual string
}

func SwitchExact(actual string) *RegisteredCases {
	return &RegisteredCases{actual: actual}
}

func (r *RegisteredCases) AddCase(cases ...string) bool {
	r.cases = append(r.cases, cases...)
	for _, c := range cases {
		if r.actual == c {
			return true
		}
	}
	return false
}

func (r *RegisteredCases) String() string {
	return "[" + strings.Join(r.cases, ", ") + "]"
}

func (r *RegisteredCases) ToUnknownCaseErr() error {
	return errorx.InvalidArgumentErrorf("expected one of %s but got %s", r.String(), r.actual)
}
