package constants

// Azure OpenAI deployment used for contract analysis.
const (
	DefaultDeployment      = "o4-mini"
	DefaultAzureAPIVersion = "2024-12-01-preview"
	DefaultTemperature     = 1.0
)

// Text length rules applied before a document is sent to the model.
const (
	ShortTextThreshold  = 3000 // runes; shorter documents are sent in full
	RecommendedMaxChars = 3500
	DefaultMinTextChars = 50 // below this the native text layer is treated as missing
)

const (
	DefaultPort       = 8501
	DefaultResultsDir = "results"
	DefaultMaxUpload  = 50 // MB
)
