package config

// Supported database drivers
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

const (
	// DefaultDatabasePath is the default path for the SQLite catalog database
	DefaultDatabasePath = "./librarydesk.db"

	// DefaultAIBaseURL is the Cloudflare API root used for Workers AI calls
	DefaultAIBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultAIModel is the Workers AI text generation model
	DefaultAIModel = "@cf/meta/llama-3-8b-instruct"

	// DefaultPlausibleScriptURL is the hosted Plausible tracker
	DefaultPlausibleScriptURL = "https://plausible.io/js/script.js"
)
