// Package idgen generates short, URL-safe IDs for graphs, nodes,
// connections and raid clients.
package idgen

import (
	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/devtycoon/forge/errors"
)

// Prefixes per entity kind
const (
	PrefixGraph      = "g-"
	PrefixNode       = "n-"
	PrefixConnection = "c-"
	PrefixClient     = "cl-"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	length   = 10
)

// New returns a new ID with the given prefix
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", errors.Wrap(err, "idgen")
	}
	return prefix + id, nil
}

// MustNew is New for callers with no error path. nanoid only fails when the
// system random source fails.
func MustNew(prefix string) string {
	id, err := New(prefix)
	if err != nil {
		panic(err)
	}
	return id
}
