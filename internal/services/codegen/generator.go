package codegen

import (
	"context"

	"github.com/mcoot/anagrams-go/internal/dependencies/random"
)

const (
	// DefaultLength is the length of generated room codes
	DefaultLength = 4
	// DefaultAlphabet is the characters used in room codes
	DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ExistsFunc reports whether a code is already taken
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator produces short human-shareable codes
type Generator struct {
	random   random.Random
	length   int
	alphabet string
}

// New creates a Generator for codes of the given length and alphabet.
// Zero values fall back to the defaults.
func New(rnd random.Random, length int, alphabet string) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	return &Generator{
		random:   rnd,
		length:   length,
		alphabet: alphabet,
	}
}

// NewDefault creates a Generator for 4-letter uppercase codes
func NewDefault(rnd random.Random) *Generator {
	return New(rnd, DefaultLength, DefaultAlphabet)
}

// Code returns a random code
func (g *Generator) Code() string {
	return g.random.String(g.length, g.alphabet)
}

// UniqueCode resamples until the code is not in existing.
// There is no retry bound; callers must leave room in the code space.
func (g *Generator) UniqueCode(existing map[string]struct{}) string {
	for {
		code := g.Code()
		if _, taken := existing[code]; !taken {
			return code
		}
	}
}

// UniqueCodeFunc resamples until exists reports the code as free
func (g *Generator) UniqueCodeFunc(ctx context.Context, exists ExistsFunc) (string, error) {
	for {
		code := g.Code()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}
