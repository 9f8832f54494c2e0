package grapherror

// Category represents the main error category for graph and raid operations
type Category string

const (
	// CategoryValidation indicates the graph document broke an authoring rule
	CategoryValidation Category = "validation"

	// CategoryCompile indicates code generation failed
	CategoryCompile Category = "compile"

	// CategoryWebSocket indicates WebSocket connection/communication errors
	CategoryWebSocket Category = "websocket"

	// CategoryRaid indicates a raid room rejected an operation
	CategoryRaid Category = "raid"

	// CategoryStorage indicates a persistence failure
	CategoryStorage Category = "storage"

	// CategoryInternal indicates internal server errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Validation Subcategories
const (
	// SubcategoryValidationDecode indicates the document could not be parsed
	SubcategoryValidationDecode = "decode"

	// SubcategoryValidationStructure indicates the graph has structural errors
	SubcategoryValidationStructure = "structure"

	// SubcategoryValidationLanguage indicates an unsupported target language
	SubcategoryValidationLanguage = "language"
)

// Compile Subcategories
const (
	// SubcategoryCompileCycle indicates traversal revisited a node on its own path
	SubcategoryCompileCycle = "cycle"

	// SubcategoryCompileTooLarge indicates the graph exceeds the node limit
	SubcategoryCompileTooLarge = "too_large"
)

// WebSocket Subcategories
const (
	// SubcategoryWSRead indicates error reading from WebSocket
	SubcategoryWSRead = "read"

	// SubcategoryWSWrite indicates error writing to WebSocket
	SubcategoryWSWrite = "write"

	// SubcategoryWSUpgrade indicates WebSocket upgrade failed
	SubcategoryWSUpgrade = "upgrade"

	// SubcategoryWSMessage indicates a malformed client message
	SubcategoryWSMessage = "message"
)

// Raid Subcategories
const (
	SubcategoryRaidFull      = "room_full"
	SubcategoryRaidNotFound  = "room_not_found"
	SubcategoryRaidNotJoined = "not_joined"
	SubcategoryRaidEventType = "event_type"
	SubcategoryRaidRateLimit = "rate_limited"
	SubcategoryRaidCompleted = "completed"
)

// Storage Subcategories
const (
	SubcategoryStorageNotFound = "not_found"
	SubcategoryStorageDatabase = "database"
)

// Internal Subcategories
const (
	// SubcategoryInternalPanic indicates a panic was recovered
	SubcategoryInternalPanic = "panic"

	// SubcategoryInternalConfig indicates configuration error
	SubcategoryInternalConfig = "config"
)
