package config

const (
	defaultDataDir      = "~/.local/share/flowq"
	defaultLogDir       = "~/.local/share/flowq/logs"
	defaultBatchSize    = 10
	defaultLeaseSeconds = 1800
	defaultMaxRetries   = 3
	defaultPollSeconds  = 5
	defaultSweepSeconds = 60
	defaultLogFormat    = ""
	defaultLogLevel     = "info"
	defaultWorkerFlow   = ""
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Queue: Queue{
			BatchSize:    defaultBatchSize,
			LeaseSeconds: defaultLeaseSeconds,
			MaxRetries:   defaultMaxRetries,
		},
		Worker: Worker{
			FlowName:            defaultWorkerFlow,
			PollIntervalSeconds: defaultPollSeconds,
		},
		Maintenance: Maintenance{
			SweepIntervalSeconds: defaultSweepSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
