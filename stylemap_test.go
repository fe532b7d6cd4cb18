package markitdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyleMap(t *testing.T) {
	sm, err := ParseStyleMap(`
# headings
p[style-name='Section Title'] => h1:fresh
p[style-name="Aside"] => blockquote
p.Code => pre
r[style-name='Hidden'] => !
`)
	require.NoError(t, err)

	tag, ok := sm.Paragraph("SectionTitle", "section title")
	assert.True(t, ok)
	assert.Equal(t, "h1", tag)

	tag, ok = sm.Paragraph("X", "Aside")
	assert.True(t, ok)
	assert.Equal(t, "blockquote", tag)

	tag, ok = sm.Paragraph("Code", "")
	assert.True(t, ok)
	assert.Equal(t, "pre", tag)

	tag, ok = sm.Run("Hidden", "Hidden")
	assert.True(t, ok)
	assert.Equal(t, dropStyle, tag)

	_, ok = sm.Paragraph("Normal", "Normal")
	assert.False(t, ok)
	_, ok = sm.Run("SectionTitle", "Section Title")
	assert.False(t, ok)
}

func TestParseStyleMapErrors(t *testing.T) {
	for _, in := range []string{
		"p[style-name='A'] -> h1",
		"x.Foo => h1",
		"p[style-name='A'] => H1",
		"\n\np.Foo",
	} {
		_, err := ParseStyleMap(in)
		assert.Error(t, err, in)
	}

	_, err := ParseStyleMap("p.A => h1\nbogus")
	assert.EqualError(t, err, `style map line 2: cannot parse "bogus"`)
}

func TestNilStyleMap(t *testing.T) {
	var sm *StyleMap
	_, ok := sm.Paragraph("Heading1", "heading 1")
	assert.False(t, ok)
	_, ok = sm.Run("Code", "Code")
	assert.False(t, ok)

	empty, err := ParseStyleMap("")
	require.NoError(t, err)
	_, ok = empty.Run("A", "B")
	assert.False(t, ok)
}
