package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkInvariants verifies the projection stays consistent with the items:
// same cardinality, same order, every listed ID backed by quantity >= 1.
func checkInvariants(t *testing.T, c *Cart) {
	t.Helper()
	ids := c.ProductIDs()
	require.Equal(t, c.UniqueItems(), len(ids))

	var total int64
	seen := make(map[string]bool)
	for _, item := range c.Items {
		require.GreaterOrEqual(t, item.Quantity, int64(1))
		require.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID)
		seen[item.ProductID] = true
		total += item.Quantity
	}
	require.Equal(t, total, c.TotalItems())
	for i, id := range ids {
		require.Equal(t, c.Items[i].ProductID, id)
	}
}

func TestAdd_AccumulatesQuantity(t *testing.T) {
	c := New()

	c.Add("p1", 2)
	c.Add("p1", 3)

	require.Equal(t, 1, c.UniqueItems())
	require.Equal(t, int64(5), c.Quantity("p1"))
	checkInvariants(t, c)
}

func TestAdd_IgnoresNonPositiveQuantity(t *testing.T) {
	c := New()

	c.Add("p1", 0)
	c.Add("p1", -3)

	require.True(t, c.IsEmpty())
	require.Equal(t, int64(0), c.Quantity("p1"))
}

func TestRemove_AbsentProductIsNoop(t *testing.T) {
	c := New()
	c.Add("p1", 1)

	c.Remove("p2")

	require.Equal(t, 1, c.UniqueItems())
	checkInvariants(t, c)
}

func TestSetQuantity_SetsExactValue(t *testing.T) {
	c := New()
	c.Add("p1", 2)

	c.SetQuantity("p1", 7)

	require.Equal(t, int64(7), c.Quantity("p1"))
	checkInvariants(t, c)
}

func TestSetQuantity_NonPositiveRemoves(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
	}{
		{name: "zero", quantity: 0},
		{name: "negative", quantity: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Add("p1", 3)

			c.SetQuantity("p1", tt.quantity)

			require.False(t, c.Contains("p1"))
			require.True(t, c.IsEmpty())
			checkInvariants(t, c)
		})
	}
}

func TestToggle_FlipsMembership(t *testing.T) {
	c := New()

	c.Toggle("p1")
	require.True(t, c.Contains("p1"))
	require.Equal(t, int64(1), c.Quantity("p1"))

	// Quantity reached via other operations does not matter; toggle removes
	// the line outright.
	c.Add("p1", 4)
	require.Equal(t, int64(5), c.Quantity("p1"))

	c.Toggle("p1")
	require.False(t, c.Contains("p1"))
	require.True(t, c.IsEmpty())
}

func TestClear_ResetsEverything(t *testing.T) {
	c := New()
	c.Add("p1", 2)
	c.Add("p2", 1)

	c.Clear()

	require.True(t, c.IsEmpty())
	require.Equal(t, int64(0), c.TotalItems())
	require.Empty(t, c.ProductIDs())
	checkInvariants(t, c)
}

func TestRetain_PrunesMissingProducts(t *testing.T) {
	c := New()
	c.Add("p1", 2)
	c.Add("p2", 1)
	c.Add("p3", 4)

	c.Retain(map[string]bool{"p1": true, "p3": true})

	require.Equal(t, []string{"p1", "p3"}, c.ProductIDs())
	require.Equal(t, int64(2), c.Quantity("p1"))
	require.Equal(t, int64(4), c.Quantity("p3"))
	checkInvariants(t, c)
}

func TestMutationSequences_KeepProjectionConsistent(t *testing.T) {
	c := New()

	ops := []func(){
		func() { c.Add("p1", 1) },
		func() { c.Add("p2", 3) },
		func() { c.Toggle("p3") },
		func() { c.SetQuantity("p2", 9) },
		func() { c.Remove("p1") },
		func() { c.Add("p2", 1) },
		func() { c.SetQuantity("p3", 0) },
		func() { c.Toggle("p1") },
		func() { c.Add("p4", 2) },
		func() { c.Remove("missing") },
	}

	for _, op := range ops {
		op()
		checkInvariants(t, c)
	}

	require.Equal(t, []string{"p2", "p1", "p4"}, c.ProductIDs())
	require.Equal(t, int64(13), c.TotalItems())
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	c := New()
	c.Add("p1", 2)
	c.Add("p2", 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))

	require.Equal(t, c.Items, restored.Items)
	require.Equal(t, c.ProductIDs(), restored.ProductIDs())
	checkInvariants(t, restored)
}
