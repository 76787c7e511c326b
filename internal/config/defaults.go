package config

const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppHTTPAddr   = ":9984"
	defaultAPIBaseURL    = "https://api.bankr.bot"
	defaultAPIKeyEnv     = "BANKRBOT_API_KEY"
	defaultRetryAttempts = 3
	defaultRetryDelay    = 5
	defaultSubmitTimeout = 30
	defaultPollInterval  = 5
	defaultMaxPolls      = 60
	defaultBatchInterval = 60
	defaultBatchMaxPolls = 15
	defaultStopLossPct   = 15
	defaultTakeProfitPct = 30
	defaultMaxPosPct     = 8
	defaultDailyTrades   = 10
	defaultBuySpikePct   = 20
	defaultDataDir       = "data"
	// joined under data_dir unless absolute
	defaultCycleDB = "cycles.db"
	defaultJobDB   = "jobs.db"
)

var defaultTokens = []string{"BNKR", "DEGEN", "DRB"}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if c.API.KeyEnv == "" {
		c.API.KeyEnv = defaultAPIKeyEnv
	}
	if c.API.RetryAttempts <= 0 {
		c.API.RetryAttempts = defaultRetryAttempts
	}
	if c.API.RetryDelaySeconds <= 0 {
		c.API.RetryDelaySeconds = defaultRetryDelay
	}
	if c.API.SubmitTimeoutSeconds <= 0 {
		c.API.SubmitTimeoutSeconds = defaultSubmitTimeout
	}
	if c.API.PollIntervalSeconds <= 0 {
		c.API.PollIntervalSeconds = defaultPollInterval
	}
	if c.API.MaxPollAttempts <= 0 {
		c.API.MaxPollAttempts = defaultMaxPolls
	}
	if c.API.BatchPollIntervalSeconds <= 0 {
		c.API.BatchPollIntervalSeconds = defaultBatchInterval
	}
	if c.API.BatchMaxPollAttempts <= 0 {
		c.API.BatchMaxPollAttempts = defaultBatchMaxPolls
	}
	if len(c.Trading.Tokens) == 0 {
		c.Trading.Tokens = append([]string(nil), defaultTokens...)
	}
	if c.Risk.StopLossPercent <= 0 {
		c.Risk.StopLossPercent = defaultStopLossPct
	}
	if c.Risk.TakeProfitPercent <= 0 {
		c.Risk.TakeProfitPercent = defaultTakeProfitPct
	}
	if c.Risk.MaxPositionPercent <= 0 {
		c.Risk.MaxPositionPercent = defaultMaxPosPct
	}
	if c.Risk.MaxDailyTrades <= 0 {
		c.Risk.MaxDailyTrades = defaultDailyTrades
	}
	if c.Sent.BuySpikePercent <= 0 {
		c.Sent.BuySpikePercent = defaultBuySpikePct
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaultDataDir
	}
	if c.Storage.CycleDBPath == "" {
		c.Storage.CycleDBPath = defaultCycleDB
	}
	if c.Storage.JobDBPath == "" {
		c.Storage.JobDBPath = defaultJobDB
	}
}
