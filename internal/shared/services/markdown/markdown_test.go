package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTMLSanitized(t *testing.T) {
	r := NewRenderer()

	out, err := r.ToHTMLSanitized("Your plan **Pro** ends in 7 days.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Pro</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestToHTML_Linkify(t *testing.T) {
	out, err := NewRenderer().ToHTMLSanitized("Pay at https://pay.example.com/cs_1")
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://pay.example.com/cs_1"`)
	assert.Contains(t, out, "nofollow")
}
