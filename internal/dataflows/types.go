package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one daily close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// CommitteeMeeting is one entry of the congress.gov committee-meeting list.
type CommitteeMeeting struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Chamber string `json:"chamber"`
	EventID string `json:"eventId"`
	URL     string `json:"url"`
}

// Nomination is one entry of the congress.gov nomination list.
type Nomination struct {
	Description  string `json:"description"`
	Organization string `json:"organization"`
	ReceivedDate string `json:"receivedDate"`
	Citation     string `json:"citation"`
}

// LatestAction is the most recent floor or committee step of a bill.
type LatestAction struct {
	ActionDate string `json:"actionDate"`
	Text       string `json:"text"`
}

// Bill is one entry of the congress.gov bill list.
type Bill struct {
	Title        string       `json:"title"`
	Number       string       `json:"number"`
	Type         string       `json:"type"`
	LatestAction LatestAction `json:"latestAction"`
}

// FearGreed is CNN's composite sentiment reading.
type FearGreed struct {
	Score  float64 `json:"score"`
	Rating string  `json:"rating"`
}

// CoinPrice is a USD spot price with its 24h change.
type CoinPrice struct {
	USD       float64  `json:"usd"`
	Change24h *float64 `json:"usd_24h_change"`
}

// InsiderSentiment represents aggregate insider sentiment
type InsiderSentiment struct {
	Symbol string          `json:"symbol"`
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Change int64           `json:"change"`
	MSPR   decimal.Decimal `json:"mspr"` // Monthly Share Purchase Ratio
}

// Story is a Hacker News item.
type Story struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

// Headline is one RSS/Atom item title.
type Headline struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}
