// Package store fetches documents from the hosted content store.  Pages depend on the Fetcher interface, never on a
// shared client, so they can be served from a fake in tests or from the snapshot cache when the store is down.
package store

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// A Fetcher runs a query against the content store and returns its result, which may be null.
type Fetcher interface {
	Fetch(ctx context.Context, query string, params Params) (gjson.Result, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, query string, params Params) (gjson.Result, error)

func (fn FetcherFunc) Fetch(ctx context.Context, query string, params Params) (gjson.Result, error) {
	return fn(ctx, query, params)
}

// Params are the named parameters of a query, referenced as $name inside it.  Values must be JSON encodable.
type Params map[string]any

// Error is returned when the content store rejects a query.
type Error struct {
	Status      int
	Description string
}

func (err *Error) Error() string {
	if err.Description == `` {
		return fmt.Sprintf(`content store returned status %v`, err.Status)
	}
	return fmt.Sprintf(`content store returned status %v: %v`, err.Status, err.Description)
}

// HTTPStatus reports the status returned by the content store.
func (err *Error) HTTPStatus() int { return err.Status }
