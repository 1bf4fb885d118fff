package integrators

import (
	"log/slog"
	"sort"

	"github.com/san-kum/dynint/internal/diffeq"
)

func logger() *slog.Logger {
	return slog.Default().With(slog.String("component", "integrators"))
}

// Constructor builds a fresh integrator for an equation. Every call returns
// a new value; nothing is cached.
type Constructor func(eq *diffeq.Equation, opts Options) (*Integrator, error)

var aliases = map[string]Kind{
	"milstein": MilsteinIto,
}

// Get resolves a method name to its constructor. Lookup ignores case and
// surrounding space.
func Get(name string) (Constructor, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return Scheme{Kind: kind}.Build, nil
}

// MustGet is like Get but panics on an unknown name.
func MustGet(name string) Constructor {
	c, err := Get(name)
	if err != nil {
		panic(err)
	}
	return c
}

// NewRK2 returns a constructor for the parametric RK2 with weight beta.
func NewRK2(beta float64) Constructor {
	return Scheme{Kind: RK2, Beta: beta}.Build
}

// Methods lists the canonical method names, sorted.
func Methods() []string {
	names := make([]string, 0, len(kindNames))
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return names
}

// Aliases maps every accepted alternative name to its canonical one.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for alias, k := range aliases {
		out[alias] = k.String()
	}
	return out
}
