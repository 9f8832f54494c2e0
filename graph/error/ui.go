package grapherror

import "fmt"

var defaultMessages = map[Category]string{
	CategoryValidation: "The graph has problems - fix the highlighted nodes and try again",
	CategoryCompile:    "The graph could not be compiled",
	CategoryWebSocket:  "Connection error - attempting to reconnect...",
	CategoryRaid:       "The raid rejected that action",
	CategoryStorage:    "Saving or loading failed - please try again",
	CategoryInternal:   "An internal error occurred - please try again",
}

// ToUIMessage converts the error to a user-friendly message suitable for UI display
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.defaultMessageForCategory()
}

func (e *GraphError) defaultMessageForCategory() string {
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// Response is the JSON body sent to clients for a GraphError
type Response struct {
	Error       string                 `json:"error"`
	Category    Category               `json:"category"`
	Subcategory string                 `json:"subcategory,omitempty"`
	Description string                 `json:"description"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   string                 `json:"timestamp"`
}

// ToResponse formats the error for an HTTP or WebSocket reply.
// Internal errors never echo the underlying message.
func (e *GraphError) ToResponse() Response {
	r := Response{
		Error:       e.Error(),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Description: e.ToUIMessage(),
		Timestamp:   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.Category == CategoryInternal || e.Category == CategoryStorage {
		r.Error = r.Description
	}
	if len(e.Context) > 0 {
		r.Context = e.Context
	}
	return r
}

// ToMeta flattens the error into string pairs, e.g. for a compile report
func (e *GraphError) ToMeta() map[string]string {
	meta := map[string]string{
		"error":       e.Error(),
		"category":    string(e.Category),
		"description": e.ToUIMessage(),
	}
	if e.Subcategory != "" {
		meta["subcategory"] = e.Subcategory
	}
	if len(e.Context) > 0 {
		meta["context"] = fmt.Sprintf("%v", e.Context)
	}
	return meta
}

// ToLogFields converts error to structured log fields for logger.Errorw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}
	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// IsCategory checks if the error matches a specific category
func (e *GraphError) IsCategory(cat Category) bool {
	return e.Category == cat
}

// IsSubcategory checks if the error matches a specific subcategory
func (e *GraphError) IsSubcategory(sub string) bool {
	return e.Subcategory == sub
}
