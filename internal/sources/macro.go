package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
)

const noFredKey = "No FRED Key"

// SeriesAPI reads the latest value of a macro series.
type SeriesAPI interface {
	LatestValue(ctx context.Context, seriesID string) (float64, error)
}

// Macro is the macro dashboard: one line per configured series, N/A where a
// series could not be read.
type Macro struct {
	api    SeriesAPI
	series []config.Series
}

func NewMacro(api SeriesAPI, series []config.Series) *Macro {
	return &Macro{api: api, series: series}
}

func (m *Macro) Name() string { return consts.Macro }

func (m *Macro) Fetch(ctx context.Context) Fragment {
	values := make([]string, len(m.series))
	errs := make([]error, len(m.series))

	var wg sync.WaitGroup
	for i, s := range m.series {
		wg.Add(1)
		go func(i int, s config.Series) {
			defer wg.Done()
			defer recoverItem(&errs[i], s.ID)
			v, err := m.api.LatestValue(ctx, s.ID)
			if err != nil {
				errs[i] = err
				return
			}
			values[i] = FormatMacro(s.Name, v)
		}(i, s)
	}
	wg.Wait()

	f := Fragment{Source: m.Name(), Status: StatusOK}
	var lines []string
	failed, missingKey := 0, 0
	for i, s := range m.series {
		if errs[i] != nil {
			values[i] = consts.State_NA
		}
		f.Entries = append(f.Entries, Entry{Label: s.Name, Value: values[i]})
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Name, values[i]))
		if errs[i] != nil {
			failed++
			if f.Err == nil {
				f.Err = errs[i]
			}
			if errors.Is(errs[i], consts.ErrMissingCredential) {
				missingKey++
			}
		}
	}
	f.Text = strings.Join(lines, "\n")

	switch {
	case len(m.series) == 0:
		f.Status, f.Reason = StatusUnavailable, consts.State_NoData
	case missingKey == len(m.series):
		f.Status, f.Reason = StatusUnavailable, noFredKey
	case failed == len(m.series):
		f.Status, f.Reason = StatusUnavailable, consts.State_Unavailable
	case failed > 0:
		f.Status = StatusPartial
	}
	return f
}

// FormatMacro renders output and money aggregates (GDP, M2) as billions and
// everything else as a percentage.
func FormatMacro(name string, v float64) string {
	if strings.Contains(name, "GDP") || strings.Contains(name, "M2") {
		return "$" + humanize.FormatFloat("#,###.", v) + "B"
	}
	return fmt.Sprintf("%.2f%%", v)
}
