package colorGenerator

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorGenerator produces bright display colors as hex tokens.
type ColorGenerator struct{}

func New() *ColorGenerator {
	return &ColorGenerator{}
}

func (g *ColorGenerator) Generate() string {
	return colorful.FastHappyColor().Clamped().Hex()
}
