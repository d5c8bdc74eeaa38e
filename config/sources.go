package config

import (
	"fmt"

	"github.com/creasty/defaults"
)

// Series names one macro series and its provider identifier.
type Series struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	ID   string `yaml:"id" json:"id" validate:"required"`
}

// Ticker names one index or asset quoted by symbol.
type Ticker struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
}

// Feed is one RSS headline source.
type Feed struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	URL  string `yaml:"url" json:"url" validate:"required,url"`
}

// Sources is the endpoint and filter table every adapter reads from. It is
// loaded once at startup and treated as read-only afterwards.
type Sources struct {
	Watchlist             []string `yaml:"watchlist" json:"watchlist" validate:"min=1,dive,required"`
	PortfolioLookbackDays int      `yaml:"portfolio_lookback_days" json:"portfolio_lookback_days" default:"92" validate:"min=1"`
	EarningsHorizonDays   int      `yaml:"earnings_horizon_days" json:"earnings_horizon_days" default:"7" validate:"min=0"`

	MacroSeries []Series `yaml:"macro_series" json:"macro_series" validate:"dive"`

	MarketIndices     []Ticker `yaml:"market_indices" json:"market_indices" validate:"dive"`
	GlobalIndices     []Ticker `yaml:"global_indices" json:"global_indices" validate:"dive"`
	IndexLookbackDays int      `yaml:"index_lookback_days" json:"index_lookback_days" default:"7" validate:"min=2"`

	HearingKeywords    []string `yaml:"hearing_keywords" json:"hearing_keywords"`
	HearingLimit       int      `yaml:"hearing_limit" json:"hearing_limit" default:"5" validate:"min=1"`
	HearingTitleBudget int      `yaml:"hearing_title_budget" json:"hearing_title_budget" default:"80" validate:"min=1"`

	NominationKeywords []string `yaml:"nomination_keywords" json:"nomination_keywords"`
	NominationLimit    int      `yaml:"nomination_limit" json:"nomination_limit" default:"10" validate:"min=1"`
	NominationCap      int      `yaml:"nomination_cap" json:"nomination_cap" default:"3" validate:"min=1"`
	NominationBudget   int      `yaml:"nomination_budget" json:"nomination_budget" default:"90" validate:"min=1"`
	NominationCutWord  string   `yaml:"nomination_cut_word" json:"nomination_cut_word" default:"vice"`

	BillLimit          int      `yaml:"bill_limit" json:"bill_limit" default:"5" validate:"min=1"`
	BillCap            int      `yaml:"bill_cap" json:"bill_cap" default:"3" validate:"min=1"`
	BillTitleBudget    int      `yaml:"bill_title_budget" json:"bill_title_budget" default:"60" validate:"min=1"`
	BillActionBudget   int      `yaml:"bill_action_budget" json:"bill_action_budget" default:"50" validate:"min=1"`
	BillExcludeActions []string `yaml:"bill_exclude_actions" json:"bill_exclude_actions"`

	CryptoIDs []string `yaml:"crypto_ids" json:"crypto_ids"`

	InsiderSymbol string `yaml:"insider_symbol" json:"insider_symbol" default:"NVDA"`
	InsiderLabel  string `yaml:"insider_label" json:"insider_label" default:"Nvidia"`
	InsiderSince  string `yaml:"insider_since" json:"insider_since" default:"2024-01-01" validate:"datetime=2006-01-02"`

	TechStories int `yaml:"tech_stories" json:"tech_stories" default:"5" validate:"min=1,max=30"`

	HeadlineFeeds    []Feed `yaml:"headline_feeds" json:"headline_feeds" validate:"dive"`
	HeadlinesPerFeed int    `yaml:"headlines_per_feed" json:"headlines_per_feed" default:"2" validate:"min=1"`
}

// DefaultSources returns the built-in tables.
func DefaultSources() *Sources {
	s := &Sources{}
	if err := s.applyDefaults(); err != nil {
		panic(err)
	}
	return s
}

// applyDefaults fills zero scalars from struct tags and empty tables from
// the built-in lists.
func (s *Sources) applyDefaults() error {
	if err := defaults.Set(s); err != nil {
		return fmt.Errorf("apply source defaults: %w", err)
	}
	if len(s.Watchlist) == 0 {
		s.Watchlist = []string{
			"CRM", "NOW", "PLTR", "AMZN", "OKLO", "BWXT", "VST", "BEPC", "DLR",
			"IEI", "LQD", "GLD", "SCCO", "RNMBY", "HXSCL", "EWY", "INDA",
		}
	}
	if len(s.MacroSeries) == 0 {
		s.MacroSeries = []Series{
			{Name: "10Y Yield", ID: "DGS10"},
			{Name: "Fed Funds Rate", ID: "FEDFUNDS"},
			{Name: "CPI", ID: "CPIAUCSL"},
			{Name: "PCE", ID: "PCE"},
			{Name: "Unemployment", ID: "UNRATE"},
			{Name: "Real GDP", ID: "GDPC1"},
			{Name: "M2 Supply", ID: "M2SL"},
		}
	}
	if len(s.MarketIndices) == 0 {
		s.MarketIndices = []Ticker{
			{Name: "S&P 500", Symbol: "^GSPC"},
			{Name: "Nasdaq", Symbol: "^IXIC"},
			{Name: "Bitcoin", Symbol: "BTC-USD"},
		}
	}
	if len(s.GlobalIndices) == 0 {
		s.GlobalIndices = []Ticker{
			{Name: "Nikkei (Japan)", Symbol: "^N225"},
			{Name: "FTSE (UK)", Symbol: "^FTSE"},
			{Name: "DAX (Germany)", Symbol: "^GDAXI"},
		}
	}
	if len(s.HearingKeywords) == 0 {
		s.HearingKeywords = []string{"bank", "finance", "crypto", "tech", "china", "tax"}
	}
	if len(s.NominationKeywords) == 0 {
		s.NominationKeywords = []string{"secretary", "governor", "commissioner"}
	}
	if len(s.BillExcludeActions) == 0 {
		s.BillExcludeActions = []string{"Referred", "Introduced"}
	}
	if len(s.CryptoIDs) == 0 {
		s.CryptoIDs = []string{"solana", "cardano"}
	}
	if len(s.HeadlineFeeds) == 0 {
		s.HeadlineFeeds = []Feed{
			{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
			{Name: "MarketWatch", URL: "http://feeds.marketwatch.com/marketwatch/topstories/"},
		}
	}
	return nil
}

func (s *Sources) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid sources: %w", err)
	}
	return nil
}
