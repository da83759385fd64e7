// Package client is a Go client for the catalogue API. It keeps a local
// mirror of server state in a store: a pure reducer folds typed actions
// into an immutable State, and every API call dispatches the actions that
// describe its outcome. Consumers read snapshots or subscribe to changes.
package client

import (
	"time"

	"github.com/shashiranjanraj/aabhushan/pkg/collection"
)

// Product is a catalogue item as it appears on the wire. Image is the
// rewritten public URL in listings and may be absent.
type Product struct {
	ID                uint      `json:"_id"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Stock             int       `json:"stock"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	ManufacturingDate time.Time `json:"manufacturingDate"`
	Image             *string   `json:"image"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CategorySummary is one row of the stock summary report.
type CategorySummary struct {
	Category   string  `json:"_id"`
	TotalStock int     `json:"totalStock"`
	AvgPrice   float64 `json:"avgPrice"`
}

// State is the client's mirror of server state.
type State struct {
	Products      []Product
	Loading       bool
	Error         string
	CurrentPage   int
	TotalPages    int
	TotalProducts int64
	Token         string
}

// Action is a state transition request handled by Reduce.
type Action interface{ isAction() }

// FetchStarted marks a listing request in flight.
type FetchStarted struct{}

// FetchSucceeded replaces the product list and page metadata wholesale.
type FetchSucceeded struct {
	Products      []Product
	CurrentPage   int
	TotalPages    int
	TotalProducts int64
}

// FetchFailed records the error; the previous list is kept.
type FetchFailed struct{ Err string }

// ProductCreated appends the new product to the local list.
type ProductCreated struct{ Product Product }

// ProductUpdated replaces the matching product in place.
type ProductUpdated struct{ Product Product }

// ProductDeleted removes the product from the local list.
type ProductDeleted struct{ ID uint }

// LoggedIn stores the bearer token.
type LoggedIn struct{ Token string }

// LoggedOut clears the bearer token.
type LoggedOut struct{}

func (FetchStarted) isAction()   {}
func (FetchSucceeded) isAction() {}
func (FetchFailed) isAction()    {}
func (ProductCreated) isAction() {}
func (ProductUpdated) isAction() {}
func (ProductDeleted) isAction() {}
func (LoggedIn) isAction()       {}
func (LoggedOut) isAction()      {}

// Reduce folds an action into the state. It is pure: the input state is
// never mutated, list changes copy first.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case FetchStarted:
		s.Loading = true
		s.Error = ""

	case FetchSucceeded:
		s.Loading = false
		s.Error = ""
		s.Products = act.Products
		s.CurrentPage = act.CurrentPage
		s.TotalPages = act.TotalPages
		s.TotalProducts = act.TotalProducts

	case FetchFailed:
		s.Loading = false
		s.Error = act.Err

	case ProductCreated:
		next := make([]Product, len(s.Products), len(s.Products)+1)
		copy(next, s.Products)
		s.Products = append(next, act.Product)
		s.TotalProducts++

	case ProductUpdated:
		i := collection.FirstIndex(s.Products, func(p Product) bool {
			return p.ID == act.Product.ID
		})
		if i < 0 {
			break
		}
		next := make([]Product, len(s.Products))
		copy(next, s.Products)
		next[i] = act.Product
		s.Products = next

	case ProductDeleted:
		before := len(s.Products)
		s.Products = collection.Filter(s.Products, func(p Product) bool {
			return p.ID != act.ID
		})
		if len(s.Products) < before {
			s.TotalProducts--
		}

	case LoggedIn:
		s.Token = act.Token

	case LoggedOut:
		s.Token = ""
	}

	return s
}
