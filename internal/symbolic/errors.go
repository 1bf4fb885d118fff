package symbolic

import "errors"

var (
	ErrSyntax          = errors.New("symbolic: syntax error")
	ErrUnknownFunction = errors.New("symbolic: unknown function")
	ErrArity           = errors.New("symbolic: wrong number of arguments")
	ErrUndefined       = errors.New("symbolic: undefined symbol")
)
