package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxOuterHeight(t *testing.T) {
	b := Box{
		Height:        100,
		MarginTop:     1,
		MarginBottom:  2,
		BorderTop:     3,
		BorderBottom:  4,
		PaddingTop:    5,
		PaddingBottom: 6,
	}
	assert.Equal(t, 121.0, b.OuterHeight())
	assert.Zero(t, Box{}.OuterHeight())
}

func TestScrollTopJournaling(t *testing.T) {
	doc := parseDoc(t, `<div id="x"></div>`)
	m := doc.Metrics()

	// Host-reported scrolls are mirrored silently.
	m.MirrorScrollTop(120)
	assert.Equal(t, 120.0, m.ScrollTop())
	assert.Zero(t, doc.Journal().Pending())

	// Engine-driven scrolls are journaled for the host to follow.
	m.SetScrollTop(300)
	assert.Equal(t, 300.0, m.ScrollTop())
	patches := doc.Journal().Drain()
	require.Len(t, patches, 1)
	assert.Equal(t, OpScroll, patches[0].Op)
	assert.Equal(t, "300", patches[0].Value)
}

func TestBoxTable(t *testing.T) {
	doc := parseDoc(t, `<div id="x"></div>`)
	m := doc.Metrics()
	n := doc.First("#x")

	// Unmeasured elements report a zero box.
	assert.Zero(t, m.BoxOf(n))

	m.SetViewport(1024, 768)
	assert.Equal(t, 1024.0, m.ViewportWidth())
	assert.Equal(t, 768.0, m.ViewportHeight())

	m.SetBox(n, Box{Width: 800, Height: 4000, Top: 50})
	assert.Equal(t, 800.0, m.Width(n))
	assert.Equal(t, 4000.0, m.Height(n))
	assert.Equal(t, 50.0, m.Top(n))
	assert.Equal(t, 4000.0, m.OuterHeight(n))
}
