package config

import "time"

// DefaultConfig returns a runnable local configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:      DefaultServerConfig(),
		Log:         DefaultLogConfig(),
		Telemetry:   DefaultTelemetryConfig(),
		OpenAI:      DefaultOpenAIConfig(),
		GoogleTTS:   DefaultGoogleTTSConfig(),
		Speech:      DefaultSpeechConfig(),
		Browser:     DefaultBrowserConfig(),
		Navigation:  DefaultNavigationConfig(),
		VectorStore: DefaultVectorStoreConfig(),
		Database:    DefaultDatabaseConfig(),
		Redis:       DefaultRedisConfig(),
		Mongo:       DefaultMongoConfig(),
		Session:     DefaultSessionConfig(),
		Uploads:     DefaultUploadsConfig(),
		Media:       DefaultMediaConfig(),
	}
}

// DefaultServerConfig returns the default HTTP listener settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		MaxConns:        0,
		RateLimitRPS:    10,
		RateLimitBurst:  30,
		AllowedOrigins:  []string{"http://localhost:8080"},
		WebDir:          "web",
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
		MaxSizeMB:        100,
		MaxBackups:       3,
		MaxAgeDays:       28,
	}
}

// DefaultTelemetryConfig returns the default telemetry settings.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "voxagent",
		SampleRate:   0.1,
	}
}

// DefaultOpenAIConfig returns the default OpenAI API settings.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:            "https://api.openai.com/v1",
		Timeout:            2 * time.Minute,
		ChatModel:          "gpt-4o",
		SearchModel:        "gpt-4o-search-preview",
		ComputerUseModel:   "computer-use-preview",
		TranscriptionModel: "whisper-1",
		TTSModel:           "tts-1",
		TTSVoice:           "alloy",
	}
}

// DefaultGoogleTTSConfig returns the default Google TTS settings.
func DefaultGoogleTTSConfig() GoogleTTSConfig {
	return GoogleTTSConfig{
		Endpoint:     "https://texttospeech.googleapis.com/v1/text:synthesize",
		SpeakingRate: 1.0,
		Timeout:      30 * time.Second,
	}
}

// DefaultSpeechConfig returns the default synthesis settings.
func DefaultSpeechConfig() SpeechConfig {
	return SpeechConfig{
		AudioDir:  "data/audio",
		Providers: []string{"google", "openai"},
	}
}

// DefaultBrowserConfig returns the default browser driver settings.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Driver:         "auto",
		Headless:       true,
		ViewportWidth:  1024,
		ViewportHeight: 768,
		StartURL:       "https://www.google.com",
		SettleDelay:    500 * time.Millisecond,
	}
}

// DefaultNavigationConfig returns the default navigation loop settings.
func DefaultNavigationConfig() NavigationConfig {
	return NavigationConfig{
		MaxRounds:     15,
		ScreenshotDir: "data/screenshots",
	}
}

// DefaultVectorStoreConfig returns the default vector store settings.
func DefaultVectorStoreConfig() VectorStoreConfig {
	return VectorStoreConfig{
		StoreName:   "INNOVATE AI Document Store",
		ExpiresDays: 30,
		Repository:  "file",
		FilePath:    "data/vector_store.json",
		RedisKey:    "voxagent:vector_store",
	}
}

// DefaultDatabaseConfig returns the default conversation database settings.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         true,
		Driver:          "sqlite",
		Name:            "data/voxagent.db",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRedisConfig returns the default Redis settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultMongoConfig returns the default MongoDB settings.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "voxagent",
		Collection: "vector_store",
		Timeout:    10 * time.Second,
	}
}

// DefaultSessionConfig returns the default session token settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL: 24 * time.Hour,
	}
}

// DefaultUploadsConfig returns the default upload settings.
func DefaultUploadsConfig() UploadsConfig {
	return UploadsConfig{
		Dir:      "data/uploads",
		MaxBytes: 16 << 20,
	}
}

// DefaultMediaConfig returns the default media retention settings.
func DefaultMediaConfig() MediaConfig {
	return MediaConfig{
		Retention:     24 * time.Hour,
		SweepInterval: time.Hour,
	}
}
