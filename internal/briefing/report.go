package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/sources"
	"github.com/dyike/CortexBrief/internal/watchlist"
)

// Report is one assembled briefing.
type Report struct {
	RunID        string             `json:"run_id"`
	Date         time.Time          `json:"date"`
	Fragments    []sources.Fragment `json:"fragments"`
	Portfolio    watchlist.Result   `json:"portfolio"`
	PortfolioErr error              `json:"-"`
	Text         string             `json:"text"`
}

// Fragment returns the fragment reported under source.
func (r *Report) Fragment(source string) sources.Fragment {
	for _, f := range r.Fragments {
		if f.Source == source {
			return f
		}
	}
	return sources.Unavailable(source, nil)
}

func (r *Report) section(source string) string {
	return r.Fragment(source).Display()
}

func (r *Report) portfolioTable() string {
	if r.PortfolioErr != nil {
		return consts.State_Unavailable
	}
	if table := r.Portfolio.Table(); table != "" {
		return table
	}
	return consts.State_NoData
}

func (r *Report) earningsRadar() string {
	if r.PortfolioErr != nil {
		return consts.State_Unavailable
	}
	return r.Portfolio.WarningsText()
}

func header(title string) string {
	return title + "\n" + strings.Repeat("-", len(title))
}

// Render fills the fixed briefing template. Section order never changes.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== INTELLIGENCE BRIEFING: %s ===\n\n", r.Date.Format("2006-01-02"))

	b.WriteString(header("[1] DC RADAR (Policy Risks)") + "\n")
	fmt.Fprintf(&b, "> HEARINGS:\n%s\n", r.section(consts.Hearings))
	fmt.Fprintf(&b, "> NOMINATIONS:\n%s\n", r.section(consts.Nominations))
	fmt.Fprintf(&b, "> LEGISLATION:\n%s\n\n", r.section(consts.Bills))

	b.WriteString(header("[2] EARNINGS & GLOBAL") + "\n")
	fmt.Fprintf(&b, "%s\n", r.earningsRadar())
	fmt.Fprintf(&b, "Markets: %s\n", r.section(consts.Markets))
	fmt.Fprintf(&b, "Global: %s\n\n", r.section(consts.Global))

	b.WriteString(header("[3] PORTFOLIO HEALTH") + "\n")
	fmt.Fprintf(&b, "%s\n\n", r.portfolioTable())

	b.WriteString(header("[4] MACRO DASHBOARD") + "\n")
	fmt.Fprintf(&b, "%s\n\n", r.section(consts.Macro))

	b.WriteString(header("[5] SENTIMENT SCANNERS") + "\n")
	fmt.Fprintf(&b, "Fear/Greed: %s\n", r.section(consts.FearGreed))
	fmt.Fprintf(&b, "Insiders: %s\n", r.section(consts.Insider))
	fmt.Fprintf(&b, "Crypto: %s\n\n", r.section(consts.Crypto))

	b.WriteString(header("[6] TECH PULSE") + "\n")
	fmt.Fprintf(&b, "%s\n\n", r.section(consts.TechPulse))

	b.WriteString(header("[7] HEADLINES") + "\n")
	fmt.Fprintf(&b, "%s\n", r.section(consts.Headlines))
	b.WriteString(strings.Repeat("=", 34) + "\n")

	return b.String()
}
