package colorGenerator

import (
	"regexp"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestColorGenerator_Generate(t *testing.T) {
	g := New()

	for i := 0; i < 50; i++ {
		token := g.Generate()
		require.Regexp(t, hexColor, token)

		c, err := colorful.Hex(token)
		require.NoError(t, err)

		_, s, v := c.Hsv()
		assert.Greater(t, s, 0.5, "color %s is not saturated", token)
		assert.Greater(t, v, 0.5, "color %s is not bright", token)
	}
}
