package server

import (
	"github.com/devtycoon/forge/db"
	"github.com/devtycoon/forge/errors"
	grapherr "github.com/devtycoon/forge/graph/error"
)

// toGraphError categorises errors that did not come from the compiler or
// the raid registry, mostly storage failures
func toGraphError(err error) *grapherr.GraphError {
	if ge, ok := grapherr.As(err); ok {
		return ge
	}
	switch {
	case errors.IsNotFoundError(err):
		return grapherr.New(grapherr.CategoryStorage, err, "Not found").
			WithSubcategory(grapherr.SubcategoryStorageNotFound)
	case errors.IsInvalidRequestError(err):
		return grapherr.New(grapherr.CategoryValidation, err, "The request is invalid").
			WithSubcategory(grapherr.SubcategoryValidationDecode)
	case db.IsDatabaseClosed(err):
		return grapherr.New(grapherr.CategoryStorage, err, "The server is shutting down").
			WithSubcategory(grapherr.SubcategoryStorageDatabase)
	}
	return grapherr.New(grapherr.CategoryInternal, err, "")
}
