// Package sources turns provider responses into briefing fragments. Every
// adapter filters, truncates and formats one category and reports failure as
// an Unavailable fragment instead of an error.
package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/CortexBrief/consts"
)

type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
	StatusPartial     Status = "partial"
)

// Entry is one labelled value, kept in display order.
type Entry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fragment is the result of one adapter invocation.
type Fragment struct {
	Source  string  `json:"source"`
	Status  Status  `json:"status"`
	Text    string  `json:"text,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

// Adapter fetches one category.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) Fragment
}

func ok(source, text string) Fragment {
	return Fragment{Source: source, Status: StatusOK, Text: text}
}

func unavailable(source, reason string, err error) Fragment {
	if reason == "" {
		reason = consts.State_Unavailable
	}
	return Fragment{Source: source, Status: StatusUnavailable, Reason: reason, Err: err}
}

// Unavailable builds the placeholder fragment used when an adapter could not
// run at all, for example when its timeout fired.
func Unavailable(source string, err error) Fragment {
	return unavailable(source, "", err)
}

// fromLines is Ok with every line, Partial when some inputs failed and
// Unavailable when nothing survived.
func fromLines(source string, lines []string, failed int, firstErr error) Fragment {
	if len(lines) == 0 {
		if failed == 0 {
			return unavailable(source, consts.State_NoData, consts.ErrNoMatchingRecords)
		}
		return unavailable(source, "", firstErr)
	}
	f := ok(source, strings.Join(lines, "\n"))
	if failed > 0 {
		f.Status = StatusPartial
		f.Err = firstErr
	}
	return f
}

// recoverItem turns a panic in a per-item goroutine into that item's error.
func recoverItem(err *error, item any) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%v: panic: %v", item, r)
	}
}

// Display is the text a section shows for this fragment.
func (f Fragment) Display() string {
	if f.Text != "" {
		return f.Text
	}
	if f.Reason != "" {
		return f.Reason
	}
	return consts.State_Unavailable
}

// Usable reports whether the fragment carries data.
func (f Fragment) Usable() bool {
	return f.Status == StatusOK || f.Status == StatusPartial
}
