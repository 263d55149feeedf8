package config

const (
	defaultDataFile           = "audio_ratings_db.json"
	defaultAPIBind            = "127.0.0.1:9002"
	defaultAudioSource        = SourceLocal
	defaultAudioDir           = "public/audio"
	defaultRawName            = "raw.wav"
	defaultImprovedName       = "improved.wav"
	defaultDriveBaseURL       = "https://www.googleapis.com/drive/v3/"
	defaultDriveTimeout       = 20
	defaultS3Region           = "us-east-1"
	defaultS3PresignMinutes   = 60
	defaultUserPassword       = "demo"
	defaultAdminPassword      = "admin"
	defaultAdminName          = "Admin"
	defaultAdminEmail         = "admin@example.com"
	defaultNotifyTimeout      = 10
	defaultLoginRatePerMinute = 30
	defaultLoginBurst         = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults. Credentials are
// left blank so normalization can apply environment fallbacks before the
// built-in demo values.
func Default() Config {
	return Config{
		Paths: Paths{
			DataFile: defaultDataFile,
			APIBind:  defaultAPIBind,
		},
		Audio: Audio{
			Source:       defaultAudioSource,
			Dir:          defaultAudioDir,
			RawName:      defaultRawName,
			ImprovedName: defaultImprovedName,
		},
		Drive: Drive{
			BaseURL:        defaultDriveBaseURL,
			TimeoutSeconds: defaultDriveTimeout,
		},
		S3: S3{
			Region:         defaultS3Region,
			PresignMinutes: defaultS3PresignMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			TestCompleted:  true,
			AttachExport:   true,
		},
		Server: Server{
			LoginRatePerMinute: defaultLoginRatePerMinute,
			LoginBurst:         defaultLoginBurst,
			Metrics:            true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
