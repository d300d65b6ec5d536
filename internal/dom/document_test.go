package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><head><title>t</title></head><body>
<div id="main" class="article"><p>Hello</p><p>World</p></div>
<span class="aside">side</span>
</body></html>`

func TestParse(t *testing.T) {
	doc, err := Parse(testPage)
	require.NoError(t, err)

	require.NotNil(t, doc.Body())
	assert.Equal(t, "body", doc.Body().Tag())

	main := doc.First("#main")
	require.NotNil(t, main)
	assert.Equal(t, "div", main.Tag())
	assert.True(t, main.HasClass("article"))

	assert.Len(t, doc.Find("p"), 2)
	assert.Nil(t, doc.First(".missing"))
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

func TestParseSanitize(t *testing.T) {
	doc, err := Parse(`<div>ok</div><script>alert(1)</script>`, WithSanitize())
	require.NoError(t, err)
	assert.Empty(t, doc.Find("script"))
	require.NotNil(t, doc.First("div"))
}

func TestXPath(t *testing.T) {
	doc, err := Parse(testPage)
	require.NoError(t, err)

	nodes, err := doc.XPath("//div[@id='main']/p")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Hello", nodes[0].Text())

	_, err = doc.XPath("///")
	assert.Error(t, err)
}

func TestCreateElementAppendBody(t *testing.T) {
	doc, err := Parse(testPage)
	require.NoError(t, err)

	div := doc.CreateElement("div")
	div.AddClass("widget")
	doc.AppendBody(div)

	require.NotNil(t, doc.First(".widget"))

	patches := doc.Journal().Drain()
	var ops []string
	for _, p := range patches {
		ops = append(ops, p.Op)
	}
	assert.Contains(t, ops, OpAppendBody)
}

func TestJournalRefPrefersID(t *testing.T) {
	doc, err := Parse(testPage)
	require.NoError(t, err)

	doc.First("#main").SetStyle("color", "red")
	patches := doc.Journal().Drain()
	require.Len(t, patches, 1)
	assert.Equal(t, "#main", patches[0].Target)

	// Anonymous elements get a synthetic reference.
	doc.First(".aside").SetStyle("color", "blue")
	patches = doc.Journal().Drain()
	require.Len(t, patches, 1)
	assert.True(t, strings.HasPrefix(patches[0].Target, "mm-"))
	assert.Equal(t, patches[0].Target, doc.First(".aside").Attr(RefAttr))
}

func TestRender(t *testing.T) {
	doc, err := Parse(testPage)
	require.NoError(t, err)

	doc.First("#main").SetStyle("color", "red")
	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `id="main"`)
	assert.Contains(t, out, "color: red")
}
