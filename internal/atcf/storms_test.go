package atcf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/vortex-track/internal/track"
)

func testCatalog() *Catalog {
	return NewCatalog([]StormEntry{
		{Name: "IDALIA", Basin: "AL", Number: 9, Year: 2023, EndDate: time.Date(2023, 8, 31, 12, 0, 0, 0, time.UTC)},
		{Name: "IAN", Basin: "AL", Number: 9, Year: 2022},
		{Name: "MAWAR", Basin: "WP", Number: 2, Year: 2023},
	})
}

func TestCatalogFind(t *testing.T) {
	entry, err := testCatalog().Find("idalia", 2023)
	require.NoError(t, err)
	assert.Equal(t, "al092023", entry.Code())

	_, err = testCatalog().Find("idalia", 2020)
	assert.ErrorIs(t, err, track.ErrNotFound)
}

func TestCatalogFindByCode(t *testing.T) {
	entry, err := testCatalog().FindByCode("AL092023")
	require.NoError(t, err)
	assert.Equal(t, "IDALIA", entry.Name)

	_, err = testCatalog().FindByCode("ep052023")
	assert.ErrorIs(t, err, track.ErrNotFound)
}

func TestCatalogInArchive(t *testing.T) {
	catalog := testCatalog()
	idalia, _ := catalog.Find("IDALIA", 2023)
	ian, _ := catalog.Find("IAN", 2022)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, catalog.InArchive(idalia, now))
	assert.True(t, catalog.InArchive(ian, now))

	// a storm that ended hours ago is still on the realtime feed
	active := time.Date(2023, 8, 31, 18, 0, 0, 0, time.UTC)
	assert.False(t, catalog.InArchive(idalia, active))
}

func TestParseStormID(t *testing.T) {
	catalog := testCatalog()

	t.Run("nhc code passes through", func(t *testing.T) {
		id, err := ParseStormID("AL092023", catalog)
		require.NoError(t, err)
		assert.Equal(t, "al092023", id)
	})

	t.Run("name plus year resolves via catalog", func(t *testing.T) {
		id, err := ParseStormID("idalia2023", catalog)
		require.NoError(t, err)
		assert.Equal(t, "al092023", id)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ParseStormID("zeta2023", catalog)
		assert.ErrorIs(t, err, track.ErrNotFound)
	})

	t.Run("no trailing year", func(t *testing.T) {
		_, err := ParseStormID("idalia", catalog)
		assert.ErrorIs(t, err, track.ErrInvalidArgument)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ParseStormID("al9", catalog)
		assert.ErrorIs(t, err, track.ErrInvalidArgument)
	})
}

func TestParseStormList(t *testing.T) {
	list := strings.Join([]string{
		"IDALIA, AL, L, , , , , 09, 2023, 2023083112",
		"MAWAR, WP, W, , , , , 02, 2023",
		"garbage line without enough fields",
	}, "\n")

	catalog, err := ParseStormList(strings.NewReader(list))
	require.NoError(t, err)

	entry, err := catalog.Find("IDALIA", 2023)
	require.NoError(t, err)
	assert.Equal(t, "al092023", entry.Code())
	assert.Equal(t, time.Date(2023, 8, 31, 12, 0, 0, 0, time.UTC), entry.EndDate)

	_, err = catalog.Find("MAWAR", 2023)
	assert.NoError(t, err)
}
