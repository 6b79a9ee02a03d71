package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="card">
	<h3>  Bitcoin
		(BTC) </h3>
	<span class="apy">%5,2</span>
	<ul><li>Flexible</li><li>Daily   Rewards</li><li></li></ul>
</div>
<div class="card"><h3>Ethereum</h3></div>
</body></html>`

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	require.Equal(t, "Bitcoin (BTC)", Text(doc.Find("h3").First()))
	require.Equal(t, "", Text(doc.Find(".missing")))
	require.Equal(t, []string{"Flexible", "Daily Rewards", ""}, Texts(doc.Find("li")))
}

func TestFirstOf(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	card := doc.Find(".card").First()
	found := FirstOf(card, []string{".coin-name", "h3", ".title"})
	require.NotNil(t, found)
	require.Equal(t, "Bitcoin (BTC)", Text(found))

	require.Nil(t, FirstOf(card, []string{".nope", ".neither"}))
	require.Equal(t, 2, AllOf(doc.Selection, []string{".card", ".stake-item"}).Length())
	require.Equal(t, 0, AllOf(doc.Selection, nil).Length())
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("\t a \n\n b   c \u0000"))
}
