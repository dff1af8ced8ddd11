package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crowdsim/internal/simconfig"
)

func TestVenueLayoutRoundTrip(t *testing.T) {
	venue := simconfig.DefaultVenueLayout()
	venue.Walls = []simconfig.Wall{
		{ID: "w1", Rect: simconfig.Rect{X: 5, Y: 0, Width: 1, Height: 8}},
	}

	doc := FromVenueLayout(venue)
	data, err := MarshalOrdered(doc)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, venue, parsed.ToVenueLayout())
}

func TestMarshalOrderedKeyOrderIsStable(t *testing.T) {
	doc := FromVenueLayout(simconfig.DefaultVenueLayout())
	data, err := MarshalOrdered(doc)
	require.NoError(t, err)

	text := string(data)
	order := []string{"formatVersion", "width", "height", "walls", "entrances", "exits", "attractors"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, `"`+key+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing key %q", key)
		require.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
}

func TestUnmarshalDefaultsMissingFormatVersion(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"width": 10, "height": 10}`))
	require.NoError(t, err)
	require.Equal(t, CurrentFormatVersion, doc.FormatVersion)
}

func TestUnmarshalRejectsMalformedInput(t *testing.T) {
	_, err := Unmarshal([]byte(`{"width": `))
	require.Error(t, err)
}

func TestSchemaDescribesDocument(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema)
	require.Equal(t, "Venue Layout", schema.Title)
	require.NotNil(t, schema.Properties)
	for _, key := range []string{"walls", "entrances", "exits", "attractors"} {
		_, ok := schema.Properties.Get(key)
		require.True(t, ok, "schema missing property %q", key)
	}
}
