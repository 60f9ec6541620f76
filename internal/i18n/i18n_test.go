package i18n

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
)

func newCatalog(t *testing.T, fallback string) *Catalog {
	catalog, err := New(fallback)
	require.NoError(t, err)
	return catalog
}

func TestResolveOrder(t *testing.T) {
	catalog := newCatalog(t, "en")

	assert.Equal(t, "en", catalog.Resolve("", "").Name())
	assert.Equal(t, "de", catalog.Resolve("de", "en-US,en;q=0.9").Name())
	assert.Equal(t, "de", catalog.Resolve("", "de-AT,de;q=0.9,en;q=0.8").Name())
	assert.Equal(t, "en", catalog.Resolve("fr", "es-ES").Name())
	assert.Equal(t, "en", catalog.Resolve("", "not a header").Name())
}

func TestUnsupportedFallback(t *testing.T) {
	catalog := newCatalog(t, "xx")
	assert.Equal(t, "en", catalog.Default().Name())

	catalog = newCatalog(t, "de")
	assert.Equal(t, "de", catalog.Default().Name())
	assert.Equal(t, "de", catalog.Resolve("", "").Name())
}

func TestTranslate(t *testing.T) {
	catalog := newCatalog(t, "en")
	assert.Equal(t, "Salary must be at least 1000", catalog.Resolve("en", "").T("salary.min"))
	assert.Equal(t, "Gehalt muss mindestens 1000 betragen", catalog.Resolve("de", "").T("salary.min"))
	assert.Equal(t, "no.such.key", catalog.Resolve("en", "").T("no.such.key"))
}

func TestEveryKeyTranslated(t *testing.T) {
	for key := range messages["en"] {
		_, found := messages["de"][key]
		assert.True(t, found, "missing german text for "+key)
	}
	for key := range validation.Messages {
		_, found := messages["de"][key]
		assert.True(t, found, "missing german text for "+key)
	}
}

func TestDisplayFormats(t *testing.T) {
	english := newCatalog(t, "en").Default()
	assert.Equal(t, "January 1, 1980", english.Date(time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1,234.50", english.Amount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "1,500.13", english.Amount(decimal.RequireFromString("1500.125")))
}
