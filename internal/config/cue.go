package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// problemSchema mirrors Config. Definitions are closed, so unknown fields
// are rejected.
const problemSchema = `
#Root: {
	f:                string
	g?:               string
	method?:          string
	x0?:              number
	x1?:              number
	tol?:             number & >=0
	max_iter?:        int & >0
	update_interval?: int & >0
	damping_tries?:   int & >0
}

#Linear: {
	method?:   string
	a:         [...[...number]]
	b:         [...number]
	x0?:       [...number]
	tol?:      number & >0
	max_iter?: int & >0
	omega?:    number & >0 & <2
}

#Problem: {
	kind:    "root" | "linear"
	root?:   #Root
	linear?: #Linear
}

#Scenario: {
	name:         string
	description?: string
	runs: [...#Problem]
}
`

func compile(filename string, data []byte, def string) (cue.Value, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(problemSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, err
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return cue.Value{}, err
	}

	unified := schema.LookupPath(cue.ParsePath(def)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return unified, nil
}

func decodeCUE(filename string, data []byte, cfg *Config) error {
	v, err := compile(filename, data, "#Problem")
	if err != nil {
		return err
	}
	return v.Decode(cfg)
}
