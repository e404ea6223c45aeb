package config

// Stem mode identifiers accepted in configuration and per-job overrides.
const (
	StemMode2 = "2"
	StemMode4 = "4"
	StemMode6 = "6"
)

// Quality preset identifiers.
const (
	QualityNormal = "normal"
	QualityHigh   = "high"
)

const (
	defaultOutputDir         = "~/SplitRipper"
	defaultWorkDir           = "~/.local/share/splitripper/work"
	defaultLogDir            = "~/.local/share/splitripper/logs"
	defaultAPIBind           = "127.0.0.1:9000"
	defaultSeparationBinary  = "demucs"
	defaultModel             = "htdemucs"
	defaultStemMode          = StemMode2
	defaultQuality           = QualityNormal
	defaultAcquisitionBinary = "yt-dlp"
	defaultAudioFormat       = "mp3"
	defaultAudioQuality      = "192"
	defaultMaxConcurrency    = 4
	defaultPollIntervalMS    = 300
	defaultReadTimeoutMS     = 500
	defaultDrainGraceSeconds = 3
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Concurrency ceiling hard bounds enforced on every write.
const (
	MinConcurrency = 1
	MaxConcurrency = 64
)

// KnownModels lists the separation models the engine accepts.
var KnownModels = []string{"htdemucs", "htdemucs_ft", "htdemucs_6s", "mdx_extra"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Separation: Separation{
			Binary:   defaultSeparationBinary,
			Model:    defaultModel,
			StemMode: defaultStemMode,
			Quality:  defaultQuality,
		},
		Acquisition: Acquisition{
			Binary:       defaultAcquisitionBinary,
			AudioFormat:  defaultAudioFormat,
			AudioQuality: defaultAudioQuality,
		},
		Workflow: Workflow{
			MaxConcurrency:    defaultMaxConcurrency,
			PollIntervalMS:    defaultPollIntervalMS,
			ReadTimeoutMS:     defaultReadTimeoutMS,
			DrainGraceSeconds: defaultDrainGraceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
