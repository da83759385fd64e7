package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []Product {
	return []Product{
		{ID: 1, Name: "Ring", Price: 100, Stock: 5},
		{ID: 2, Name: "Anklet", Price: 50, Stock: 10},
		{ID: 3, Name: "Pendant", Price: 200, Stock: 2},
	}
}

func TestReduceFetchStartedSetsLoadingAndClearsError(t *testing.T) {
	s := State{Error: "old failure", Products: sampleProducts()}

	next := Reduce(s, FetchStarted{})

	assert.True(t, next.Loading)
	assert.Empty(t, next.Error)
	assert.Equal(t, sampleProducts(), next.Products, "list untouched while loading")
}

func TestReduceFetchSucceededReplacesListWholesale(t *testing.T) {
	s := State{Loading: true, Products: sampleProducts(), CurrentPage: 1}

	next := Reduce(s, FetchSucceeded{
		Products:      []Product{{ID: 9, Name: "New"}},
		CurrentPage:   2,
		TotalPages:    4,
		TotalProducts: 31,
	})

	assert.False(t, next.Loading)
	require.Len(t, next.Products, 1)
	assert.Equal(t, uint(9), next.Products[0].ID)
	assert.Equal(t, 2, next.CurrentPage)
	assert.Equal(t, 4, next.TotalPages)
	assert.Equal(t, int64(31), next.TotalProducts)
}

func TestReduceFetchFailedKeepsPreviousList(t *testing.T) {
	s := State{Loading: true, Products: sampleProducts()}

	next := Reduce(s, FetchFailed{Err: "connection refused"})

	assert.False(t, next.Loading)
	assert.Equal(t, "connection refused", next.Error)
	assert.Equal(t, sampleProducts(), next.Products)
}

func TestReduceProductCreatedAppends(t *testing.T) {
	s := State{Products: sampleProducts(), TotalProducts: 3}

	next := Reduce(s, ProductCreated{Product: Product{ID: 4, Name: "Bangle"}})

	require.Len(t, next.Products, 4)
	assert.Equal(t, "Bangle", next.Products[3].Name)
	assert.Equal(t, int64(4), next.TotalProducts)
	assert.Len(t, s.Products, 3, "input state not mutated")
}

func TestReduceProductUpdatedReplacesInPlace(t *testing.T) {
	s := State{Products: sampleProducts()}

	next := Reduce(s, ProductUpdated{Product: Product{ID: 2, Name: "Anklet", Stock: 8}})

	require.Len(t, next.Products, 3)
	assert.Equal(t, 8, next.Products[1].Stock)
	assert.Equal(t, uint(2), next.Products[1].ID)
	assert.Equal(t, 10, s.Products[1].Stock, "input state not mutated")
}

func TestReduceProductUpdatedUnknownIDIsNoop(t *testing.T) {
	s := State{Products: sampleProducts()}

	next := Reduce(s, ProductUpdated{Product: Product{ID: 99, Name: "Ghost"}})

	assert.Equal(t, sampleProducts(), next.Products)
}

func TestReduceProductDeletedRemoves(t *testing.T) {
	s := State{Products: sampleProducts(), TotalProducts: 3}

	next := Reduce(s, ProductDeleted{ID: 2})

	require.Len(t, next.Products, 2)
	assert.Equal(t, uint(1), next.Products[0].ID)
	assert.Equal(t, uint(3), next.Products[1].ID)
	assert.Equal(t, int64(2), next.TotalProducts)

	// Deleting an unknown id changes nothing.
	again := Reduce(next, ProductDeleted{ID: 42})
	assert.Equal(t, next.Products, again.Products)
	assert.Equal(t, next.TotalProducts, again.TotalProducts)
}

func TestReduceTokenLifecycle(t *testing.T) {
	s := Reduce(State{}, LoggedIn{Token: "jwt-token"})
	assert.Equal(t, "jwt-token", s.Token)

	s = Reduce(s, LoggedOut{})
	assert.Empty(t, s.Token)
}

func TestStoreDispatchNotifiesSubscribers(t *testing.T) {
	store := NewStore(State{})

	var seen []State
	store.Subscribe(func(s State) { seen = append(seen, s) })

	store.Dispatch(FetchStarted{})
	store.Dispatch(FetchFailed{Err: "boom"})

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, "boom", seen[1].Error)
	assert.Equal(t, "boom", store.State().Error)
}
