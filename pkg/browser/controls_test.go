package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentsPage = `<!DOCTYPE html>
<html>
<head>
  <title>Documents</title>
  <script>var btn = "<button>Fake</button>";</script>
</head>
<body>
  <form>
    <input type="hidden" name="token" value="abc">
    <input type="submit" id="merge" value="Merge Documents">
    <button name="amend">  Amend
      Overview </button>
    <a href="/exit">Exit</a>
    <select name="reason"><option>1. Incomplete</option><option>8. Not competitive</option></select>
    <input type="text" name="search">
  </form>
</body>
</html>`

func TestParseControls(t *testing.T) {
	controls, err := ParseControls(documentsPage)
	require.NoError(t, err)
	require.Len(t, controls, 5)

	assert.Equal(t, "input", controls[0].Tag)
	assert.Equal(t, "Merge Documents", controls[0].Label())
	assert.Equal(t, "merge", controls[0].ID)

	assert.Equal(t, "button", controls[1].Tag)
	assert.Equal(t, "Amend Overview", controls[1].Label())

	assert.Equal(t, "Exit", controls[2].Label())

	assert.Equal(t, "select", controls[3].Tag)
	assert.Equal(t, "reason", controls[3].Name)

	assert.Equal(t, "text", controls[4].Type)
	assert.Empty(t, controls[4].Label())
}

func TestParseControls_Empty(t *testing.T) {
	controls, err := ParseControls("")
	require.NoError(t, err)
	assert.Empty(t, controls)
}

func TestSummarizeControls(t *testing.T) {
	controls := []Control{
		{Tag: "input", Type: "submit", ID: "go", Value: "Search"},
		{Tag: "a", Text: "Actions"},
		{Tag: "button", Name: "yes", Text: "Yes"},
	}

	out := SummarizeControls(controls, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `<input type=submit id=go> "Search"`, lines[0])
	assert.Equal(t, `<a> "Actions"`, lines[1])
	assert.Equal(t, "... 1 more", lines[2])

	assert.NotContains(t, SummarizeControls(controls, 0), "more")
}

func TestTarget_String(t *testing.T) {
	assert.Equal(t, "input[type='radio'] nth=1", Target{Selector: "input[type='radio']", Nth: 1}.String())
	assert.Equal(t, "label=Reject", Target{Label: "Reject"}.String())
	assert.Equal(t, "a", Sel("a").String())
}
