package cfg

type Cfg struct {
	// Feed configuration
	FeedURL     string
	MaxAgeHours int

	// Database configuration
	DBPath         string
	ClaimTTLHours  int
	RecordTTLHours int
	SweepInterval  int

	// Bluesky configuration
	BlueskyPDS      string
	CredentialsFile string
	BlueskyUsername string
	BlueskyPassword string

	// AI summarization configuration
	EnableAISummary  bool
	AIEndpoint       string
	AIModelID        string
	AIAPIKey         string
	AIMaxGraphemes   int
	AITimeoutSeconds int

	// Post configuration
	MaxPostGraphemes int
	ExtractContent   bool

	// Application configuration
	Port              string
	SchedulerInterval int
	WorkerCount       int
	FetchTimeout      int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
