package parser

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testListingParser(t *testing.T) ListingParser {
	t.Helper()
	base, err := url.Parse("https://sms24.me")
	require.NoError(t, err)
	return ListingParser{Provider: "sms24", BaseURL: base}
}

func TestListingParser_Parse(t *testing.T) {
	numbers, err := testListingParser(t).Parse(fixture(t, "listing.html"))
	require.NoError(t, err)
	require.Len(t, numbers, 4)

	us := numbers[0]
	assert.Equal(t, "12025550123", us.ID)
	assert.Equal(t, "+12025550123", us.Phone)
	assert.Equal(t, "sms24", us.Provider)
	assert.Equal(t, "https://sms24.me/en/numbers/12025550123", us.SourceURL)
	require.NotNil(t, us.CountryCode)
	assert.Equal(t, "us", *us.CountryCode)
	require.NotNil(t, us.Country)
	assert.Equal(t, "United States", *us.Country)

	assert.Equal(t, "+447700900123", numbers[1].Phone)
	assert.Equal(t, "https://sms24.me/en/numbers/447700900123", numbers[1].SourceURL)
	assert.Equal(t, "gb", *numbers[1].CountryCode)

	// Same-page duplicates are left for the caller to collapse.
	assert.Equal(t, "+12025550123", numbers[2].Phone)
	assert.Nil(t, numbers[2].CountryCode)
	assert.Nil(t, numbers[2].Country)

	assert.Equal(t, "8613800138000", numbers[3].ID)
	assert.Equal(t, "https://sms24.me/en/numbers/8613800138000?lang=en", numbers[3].SourceURL)
}

func TestListingParser_GenericAnchorsWhenNoCallouts(t *testing.T) {
	doc := `<html><body>
<a href="/en/numbers/12025550123">US</a>
<a href="/en/numbers/page/2">next</a>
<a href="/about">about</a>
</body></html>`
	numbers, err := testListingParser(t).Parse(doc)
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, "+12025550123", numbers[0].Phone)
}

func TestListingParser_NoAnchors(t *testing.T) {
	numbers, err := testListingParser(t).Parse("<html><body>maintenance</body></html>")
	require.NoError(t, err)
	assert.Empty(t, numbers)
}
