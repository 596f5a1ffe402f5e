package icontheme

import (
	"errors"
	"strings"
)

var (
	// ErrParse is wrapped by every ParseError.
	ErrParse = errors.New("product icon theme: syntax error")

	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("product icon theme: invalid structure")
)

// ParseError reports that the theme text is not well-formed. It carries
// every problem the parser found, not just the first.
type ParseError struct {
	Problems []SyntaxProblem
	message  string
}

func (e *ParseError) Error() string {
	return e.message
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Messages returns one description per syntax problem.
func (e *ParseError) Messages() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.String()
	}
	return out
}

// ValidationError reports a well-formed document missing its required
// shape. Property names the offending top-level property; it is empty
// when the document is not an object at all.
type ValidationError struct {
	Property string
	message  string
}

func (e *ValidationError) Error() string {
	return e.message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func joinProblems(problems []SyntaxProblem) string {
	names := make([]string, len(problems))
	for i, p := range problems {
		names[i] = p.Code.String()
	}
	return strings.Join(names, ", ")
}
