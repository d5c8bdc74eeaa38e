package consts

// Source names label fragments, log lines and metrics.
const (
	// DC radar
	Hearings    = "hearings"
	Nominations = "nominations"
	Bills       = "bills"

	// Macro & markets
	Macro   = "macro"
	Markets = "markets"
	Global  = "global"

	// Sentiment & news
	FearGreed = "fear_greed"
	Insider   = "insider"
	Crypto    = "crypto"
	TechPulse = "tech_pulse"
	Headlines = "headlines"

	// Portfolio
	Watchlist = "watchlist"
	Earnings  = "earnings"
)
