package grapherror

import (
	"net/http"
	"time"

	"github.com/devtycoon/forge/errors"
)

// GraphError is a categorised failure from compiling a graph or relaying a
// raid, carrying a message that is safe to show a player
type GraphError struct {
	Err         error                  // Underlying error
	Category    Category               // Main category
	Subcategory string                 // Optional subcategory
	UserMessage string                 // User-friendly message for UI display
	Context     map[string]interface{} // Additional context for debugging
	Timestamp   time.Time              // When the error occurred
}

// Error implements the error interface
func (e *GraphError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *GraphError) Unwrap() error {
	return e.Err
}

// New creates a new GraphError with the specified category and messages
func New(category Category, err error, userMsg string) *GraphError {
	return &GraphError{
		Err:         err,
		Category:    category,
		UserMessage: userMsg,
		Context:     make(map[string]interface{}),
		Timestamp:   time.Now(),
	}
}

// Newf creates a new GraphError with a formatted error message
func Newf(category Category, userMsg, format string, args ...interface{}) *GraphError {
	return New(category, errors.Newf(format, args...), userMsg)
}

// As finds the first GraphError in err's chain
func As(err error) (*GraphError, bool) {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// Wrap categorises err unless it already carries a category
func Wrap(category Category, err error, userMsg string) *GraphError {
	if ge, ok := As(err); ok {
		return ge
	}
	return New(category, err, userMsg)
}

// WithSubcategory adds a subcategory to the error
func (e *GraphError) WithSubcategory(sub string) *GraphError {
	e.Subcategory = sub
	return e
}

// WithContext adds a context key-value pair for debugging
func (e *GraphError) WithContext(key string, value interface{}) *GraphError {
	e.Context[key] = value
	return e
}

// WithContextMap adds multiple context key-value pairs
func (e *GraphError) WithContextMap(ctx map[string]interface{}) *GraphError {
	for k, v := range ctx {
		e.Context[k] = v
	}
	return e
}

// HTTPStatus maps the category onto a response code
func (e *GraphError) HTTPStatus() int {
	switch e.Category {
	case CategoryValidation:
		if e.Subcategory == SubcategoryValidationDecode {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case CategoryCompile:
		return http.StatusUnprocessableEntity
	case CategoryStorage:
		if e.Subcategory == SubcategoryStorageNotFound {
			return http.StatusNotFound
		}
	case CategoryRaid:
		switch e.Subcategory {
		case SubcategoryRaidNotFound:
			return http.StatusNotFound
		case SubcategoryRaidFull, SubcategoryRaidCompleted:
			return http.StatusConflict
		case SubcategoryRaidRateLimit:
			return http.StatusTooManyRequests
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
