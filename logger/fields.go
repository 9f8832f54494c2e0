package logger

// Standard field names for structured logging.
// Use these constants instead of raw strings so console rendering and log
// queries agree on keys.
const (
	// Identity
	FieldClientID = "client_id"
	FieldPlayerID = "player_id"
	FieldRaidID   = "raid_id"
	FieldGraphID  = "graph_id"

	// Components
	FieldComponent = "component"

	// Compiler
	FieldLanguage = "language"
	FieldNodes    = "nodes"
	FieldEdges    = "connections"
	FieldIssues   = "issues"

	// Raid
	FieldEventType    = "event_type"
	FieldParticipants = "participants"

	// Operations
	FieldMethod = "method"
	FieldPath   = "path"
	FieldStatus = "status"

	// Storage
	FieldMigration     = "migration"
	FieldSchemaVersion = "schema_version"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files and network
	FieldFile    = "file"
	FieldAddress = "address"
	FieldPort    = "port"
)
