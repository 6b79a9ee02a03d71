package sources

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownSource = errors.New("unknown source")

// order in which sources are registered, cycles iterate in this order.
var registered = []string{
	"btcturk",
	"paribu",
	"bitexen",
	"bitci",
	"cointr",
	"icrypex",
	"bitay",
}

var constructors = map[string]func(Deps) Source{
	"btcturk": func(d Deps) Source { return NewBtcTurk(d) },
	"paribu":  func(d Deps) Source { return NewParibu(d) },
	"bitexen": func(d Deps) Source { return NewBitexen(d) },
	"bitci":   func(d Deps) Source { return NewBitci(d) },
	"cointr":  func(d Deps) Source { return NewCoinTR(d) },
	"icrypex": func(d Deps) Source { return NewICRYPEX(d) },
	"bitay":   func(d Deps) Source { return NewBitay(d) },
}

// IDs returns the ids of every registered source.
func IDs() []string {
	return slices.Clone(registered)
}

func New(id string, deps Deps) (Source, error) {
	constructor, ok := constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownSource, id)
	}
	return constructor(deps), nil
}

// All constructs every registered source, depsFor lets each source receive
// its own logging handle.
func All(depsFor func(id string) Deps) []Source {
	out := make([]Source, len(registered))
	for i, id := range registered {
		out[i] = constructors[id](depsFor(id))
	}
	return out
}
