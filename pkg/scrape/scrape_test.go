package scrape

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentFrom(t *testing.T, markup string) *goquery.Document {
	t.Helper()

	document, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	return document
}

func TestHarvestFieldsByNameAndID(t *testing.T) {
	document := documentFrom(t, `
		<form>
			<input name="Date" value="01.02.2025">
			<input name="__RequestVerificationToken" value="tok123">
			<input id="input-is-search-wanted" name="IsSearchWanted" value="False">
		</form>`)

	form := HarvestFields(document, []string{"Date", "__RequestVerificationToken", "IsSearchWanted", "Missing"})

	assert.Equal(t, "01.02.2025", form.Get("Date"))
	assert.Equal(t, "tok123", form.Get("__RequestVerificationToken"))
	assert.Equal(t, "False", form.Get("IsSearchWanted"))
	assert.False(t, form.Has("Missing"))
}

func TestForceSearchFlagsOverridesPageDefaults(t *testing.T) {
	form := url.Values{}
	form.Set("IsSearchWanted", "False")

	ForceSearchFlags(form)

	assert.Equal(t, "True", form.Get("IsSearchWanted"))
	assert.Equal(t, "False", form.Get("IsReCaptchaFailed"))
}

func TestIsRedirectStub(t *testing.T) {
	stub := documentFrom(t, `<script>window.location = "/ro-RO/Tren/123";</script>`)
	assert.True(t, IsRedirectStub(stub))

	real := documentFrom(t, `<ul><li class="list-group-item">data</li></ul>`)
	assert.False(t, IsRedirectStub(real))
}
