package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("<p>hello</p>"))
	assert.True(t, IsHTML("line<br/>break"))
	assert.False(t, IsHTML("5 < 6 and 7 > 3"))
	assert.False(t, IsHTML("plain text"))
}

func TestIsBlank(t *testing.T) {
	blank := []string{"", "   ", "\n\t", "<p></p>", "<p><br></p>", "<p>&nbsp;</p>", "<ul><li> </li></ul>"}
	for _, s := range blank {
		assert.True(t, IsBlank(s), "%q should be blank", s)
	}

	notBlank := []string{"x", "<p>x</p>", "<ul><li>Go</li></ul>"}
	for _, s := range notBlank {
		assert.False(t, IsBlank(s), "%q should not be blank", s)
	}
}
