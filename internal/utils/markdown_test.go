package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**Parques** para todos <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>Parques</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownImagesAreLazy(t *testing.T) {
	out := string(RenderMarkdown("![plano](https://colabora.mx/media/plano.png)"))
	assert.True(t, strings.Contains(out, `loading="lazy"`), out)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hola vecinos", PlainText("  <b>Hola</b> vecinos \n"))
	assert.Equal(t, "", PlainText("<img src=x onerror=alert(1)>"))
}

func TestPlainTextStripsEncodedMarkup(t *testing.T) {
	assert.Equal(t, "", PlainText("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "", PlainText("&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;"))
	assert.Equal(t, "hola", PlainText("&lt;b&gt;hola&lt;/b&gt;"))
	assert.NotContains(t, PlainText("&lt;img src=x onerror=alert(1)&gt;texto"), "<img")
}

func TestPlainTextKeepsLiteralLessThan(t *testing.T) {
	assert.Equal(t, "1 < 2 & 3 > 2", PlainText("1 < 2 & 3 > 2"))
}

func TestPlainTextKeepsPunctuation(t *testing.T) {
	assert.Equal(t, `Reciclaje & "compostaje" d'aquí`, PlainText(`Reciclaje & "compostaje" d'aquí`))
}
