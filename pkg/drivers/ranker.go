package drivers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/synaptica-ai/icu-risk/pkg/features"
)

type Direction string

const (
	Below Direction = "below"
	Above Direction = "above"
)

func (d Direction) Arrow() string {
	if d == Below {
		return "↓"
	}
	return "↑"
}

type Severity string

const (
	Mild    Severity = "mild"
	Extreme Severity = "extreme"
)

func (s Severity) Icon() string {
	if s == Extreme {
		return "🔴"
	}
	return "🟡"
}

const (
	defaultShown  = 3
	expandedShown = 5
	// more than this many extreme drivers widens the list to expandedShown
	extremeCutoff = 3
)

// Driver is one abnormal feature, derived on demand and never stored.
type Driver struct {
	Feature    features.Name `json:"feature"`
	Label      string        `json:"label"`
	Unit       string        `json:"unit"`
	Value      float64       `json:"value"`
	NormalLow  float64       `json:"normal_low"`
	NormalHigh float64       `json:"normal_high"`
	Direction  Direction     `json:"direction"`
	Severity   Severity      `json:"severity"`
	Score      float64       `json:"score"`
	Icon       string        `json:"icon"`
	Text       string        `json:"text"`
}

// Ranking is the shown drivers plus counts over the full abnormal set.
type Ranking struct {
	Drivers []Driver `json:"drivers"`
	Shown   int      `json:"shown_count"`
	Extreme int      `json:"extreme_count"`
	Total   int      `json:"total_abnormal"`
}

type Ranker struct {
	table Table
}

func NewRanker(table Table) *Ranker {
	return &Ranker{table: table}
}

// Rank scores every abnormal driver feature in rec, most abnormal first.
// Unless showAll is set the list is cut to 3, or to 5 when more than 3
// drivers are extreme.
func (r *Ranker) Rank(rec features.Record, showAll bool) Ranking {
	all := make([]Driver, 0)
	extreme := 0
	for _, name := range r.table.Features {
		value, ok := rec.Get(name)
		if !ok {
			continue
		}
		cr, ok := r.table.Ranges[name]
		if !ok {
			continue
		}
		d, abnormal := r.score(name, value, cr)
		if !abnormal {
			continue
		}
		if d.Severity == Extreme {
			extreme++
		}
		all = append(all, d)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	shown := all
	if !showAll {
		limit := defaultShown
		if extreme > extremeCutoff {
			limit = expandedShown
		}
		if len(shown) > limit {
			shown = shown[:limit]
		}
	}

	return Ranking{
		Drivers: shown,
		Shown:   len(shown),
		Extreme: extreme,
		Total:   len(all),
	}
}

func (r *Ranker) score(name features.Name, value float64, cr ClinicalRange) (Driver, bool) {
	if value >= cr.Low && value <= cr.High {
		return Driver{}, false
	}
	width := cr.High - cr.Low
	if width <= 0 {
		width = 1.0
	}

	d := Driver{
		Feature:    name,
		Label:      cr.Label,
		Unit:       cr.Unit,
		Value:      value,
		NormalLow:  cr.Low,
		NormalHigh: cr.High,
		Severity:   Mild,
	}
	if value < cr.Low {
		d.Direction = Below
		d.Score = (cr.Low - value) / width
	} else {
		d.Direction = Above
		d.Score = (value - cr.High) / width
	}
	if d.Score >= r.table.Threshold(name) {
		d.Severity = Extreme
	}
	d.Icon = d.Severity.Icon()
	d.Text = FormatText(d)
	return d, true
}

// FormatText renders "Label: value unit (normal low–high) arrow".
func FormatText(d Driver) string {
	var b strings.Builder
	b.WriteString(d.Label)
	b.WriteString(": ")
	b.WriteString(formatValue(d.Value))
	if d.Unit != "" {
		b.WriteString(" ")
		b.WriteString(d.Unit)
	}
	fmt.Fprintf(&b, " (normal %s–%s) %s",
		strconv.FormatFloat(d.NormalLow, 'f', -1, 64),
		strconv.FormatFloat(d.NormalHigh, 'f', -1, 64),
		d.Direction.Arrow())
	return b.String()
}

func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
