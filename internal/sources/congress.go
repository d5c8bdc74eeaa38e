package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

const noCongressKey = "No Congress Key"

// CongressAPI is the slice of the Congress.gov client the DC radar needs.
type CongressAPI interface {
	CommitteeMeetings(ctx context.Context, limit int) ([]dataflows.CommitteeMeeting, error)
	Nominations(ctx context.Context, limit int) ([]dataflows.Nomination, error)
	Bills(ctx context.Context, limit int) ([]dataflows.Bill, error)
}

// congressFailure maps a client error onto the adapter's fallback text.
func congressFailure(source string, err error, notFound, failed string) Fragment {
	switch {
	case errors.Is(err, consts.ErrMissingCredential):
		return unavailable(source, noCongressKey, err)
	case errors.Is(err, consts.ErrNoMatchingRecords):
		return unavailable(source, notFound, err)
	default:
		return unavailable(source, failed, err)
	}
}

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// noMatches is the placeholder shown when the filter leaves nothing. The text
// still renders as the section body; Err keeps the cause visible to metrics.
func noMatches(source, text string) Fragment {
	f := ok(source, text)
	f.Err = fmt.Errorf("%s: %w", source, consts.ErrNoMatchingRecords)
	return f
}

// Hearings lists upcoming committee meetings on finance-relevant topics.
type Hearings struct {
	api CongressAPI
	cfg *config.Sources
}

func NewHearings(api CongressAPI, cfg *config.Sources) *Hearings {
	return &Hearings{api: api, cfg: cfg}
}

func (h *Hearings) Name() string { return consts.Hearings }

func (h *Hearings) Fetch(ctx context.Context) Fragment {
	meetings, err := h.api.CommitteeMeetings(ctx, h.cfg.HearingLimit)
	if err != nil {
		return congressFailure(h.Name(), err, "No hearings found.", "Committee Data Unavailable")
	}
	if len(meetings) > h.cfg.HearingLimit {
		meetings = meetings[:h.cfg.HearingLimit]
	}

	var lines []string
	for _, m := range meetings {
		if !containsAny(m.Title, h.cfg.HearingKeywords) {
			continue
		}
		date := m.Date
		if date == "" {
			date = consts.State_NA
		}
		lines = append(lines, fmt.Sprintf("📅 %s: %s...", date, dataflows.Truncate(m.Title, h.cfg.HearingTitleBudget)))
	}
	if len(lines) == 0 {
		return noMatches(h.Name(), "No major financial hearings.")
	}
	return ok(h.Name(), strings.Join(lines, "\n"))
}

// Nominations lists pending regulator-level nominations.
type Nominations struct {
	api CongressAPI
	cfg *config.Sources
}

func NewNominations(api CongressAPI, cfg *config.Sources) *Nominations {
	return &Nominations{api: api, cfg: cfg}
}

func (n *Nominations) Name() string { return consts.Nominations }

func (n *Nominations) Fetch(ctx context.Context) Fragment {
	noms, err := n.api.Nominations(ctx, n.cfg.NominationLimit)
	if err != nil {
		return congressFailure(n.Name(), err, "No nominations.", "Nomination Data Unavailable")
	}

	var lines []string
	for _, nom := range noms {
		if !containsAny(nom.Description, n.cfg.NominationKeywords) {
			continue
		}
		desc := nom.Description
		if n.cfg.NominationCutWord != "" {
			desc, _, _ = strings.Cut(desc, n.cfg.NominationCutWord)
		}
		desc = strings.TrimSpace(desc)
		lines = append(lines, fmt.Sprintf("- %s...", dataflows.Truncate(desc, n.cfg.NominationBudget)))
		if len(lines) == n.cfg.NominationCap {
			break
		}
	}
	if len(lines) == 0 {
		return noMatches(n.Name(), "No major nominations.")
	}
	return ok(n.Name(), strings.Join(lines, "\n"))
}

// Bills lists legislation whose latest action is past the referral stage.
type Bills struct {
	api CongressAPI
	cfg *config.Sources
}

func NewBills(api CongressAPI, cfg *config.Sources) *Bills {
	return &Bills{api: api, cfg: cfg}
}

func (b *Bills) Name() string { return consts.Bills }

func (b *Bills) Fetch(ctx context.Context) Fragment {
	bills, err := b.api.Bills(ctx, b.cfg.BillLimit)
	if err != nil {
		return congressFailure(b.Name(), err, "No bills found.", "Legislation Data Unavailable")
	}

	var lines []string
	for _, bill := range bills {
		action := bill.LatestAction.Text
		if b.stalled(action) {
			continue
		}
		title := bill.Title
		if title == "" {
			title = "No Title"
		}
		lines = append(lines, fmt.Sprintf("📜 %s... \n   STATUS: %s",
			dataflows.Truncate(title, b.cfg.BillTitleBudget),
			dataflows.Truncate(action, b.cfg.BillActionBudget)))
		if len(lines) == b.cfg.BillCap {
			break
		}
	}
	if len(lines) == 0 {
		return noMatches(b.Name(), "No major bills moving.")
	}
	return ok(b.Name(), strings.Join(lines, "\n"))
}

// stalled matches the exclusion markers case-sensitively, as Congress.gov
// capitalises them at the start of the action text.
func (b *Bills) stalled(action string) bool {
	for _, marker := range b.cfg.BillExcludeActions {
		if marker != "" && strings.Contains(action, marker) {
			return true
		}
	}
	return false
}
