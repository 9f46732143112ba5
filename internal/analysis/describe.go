package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/retailpulse-cli/internal/dataset"
)

// Options controls the describe report.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopValues caps the categorical top-value list per column.
	TopValues int
	// Number parsing locale, shared with the loaders.
	Parse dataset.Options
}

// DefaultOptions returns reasonable defaults for the describe step.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8}
}

// Report is a markdown-friendly description of a table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|empty
	NonNull int
	Missing int
	Unique  int
	// Numeric stats (pandas describe); Count is the number of parsed values
	Count                int
	Mean, Std            float64
	Min, Q1, Q2, Q3, Max float64
	// Categorical top values
	TopValues []CategoryCount
}

// CategoryCount is a value with its number of occurrences.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Describe computes per-column statistics for t.
func Describe(t *dataset.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Rows: t.Len()}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for i := 0; i < len(t.Rows) && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, t.Rows[i])
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}

	for j, name := range t.Header {
		s := ColumnSummary{Name: strings.TrimSpace(name)}
		var nums []float64
		var dtCnt int
		var texts []string
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[j])
			if v == "" {
				s.Missing++
				continue
			}
			s.NonNull++
			if x, err := dataset.ParseNumber(v, opt.Parse); err == nil {
				nums = append(nums, x)
				continue
			}
			if _, err := dataset.ParseMonth(v); err == nil {
				dtCnt++
				continue
			}
			texts = append(texts, v)
		}
		switch {
		case len(nums) > 0 && len(nums) >= dtCnt && len(nums) >= len(texts):
			s.Kind = "numeric"
			fillNumeric(&s, nums)
			if len(texts) > 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s: %d non-numeric values ignored", s.Name, len(texts)))
			}
		case dtCnt > 0 && dtCnt >= len(texts):
			s.Kind = "datetime"
		case len(texts) > 0:
			counts := ValueCounts(texts)
			s.Unique = len(counts)
			if s.Unique <= len(texts)/2 || s.Unique <= topN {
				s.Kind = "categorical"
			} else {
				s.Kind = "text"
			}
			if len(counts) > topN {
				counts = counts[:topN]
			}
			s.TopValues = counts
		default:
			s.Kind = "empty"
		}
		rep.Cols = append(rep.Cols, s)
	}
	return rep
}

func fillNumeric(s *ColumnSummary, vals []float64) {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Count = len(sorted)
	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	} else {
		s.Std = math.NaN()
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Q2 = quantile(sorted, 0.50)
	s.Q3 = quantile(sorted, 0.75)
}

// quantile interpolates between order statistics at q*(n-1), as pandas does.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Columns lists the column names in header order.
func (r *Report) Columns() []string {
	out := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		out[i] = c.Name
	}
	return out
}

// Markdown renders a compact report suitable for the console or a file.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (%s)\n\n", len(r.Cols), strings.Join(r.Columns(), ", ")))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		if (c.Kind == "categorical" || c.Kind == "text") && len(c.TopValues) > 0 {
			b.WriteString(" — top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	var numeric []ColumnSummary
	for _, c := range r.Cols {
		if c.Kind == "numeric" {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\n[DESCRIBE]\n")
		b.WriteString("| stat |")
		for _, c := range numeric {
			b.WriteString(" " + safeName(c.Name) + " |")
		}
		b.WriteString("\n|---|")
		for range numeric {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		rows := []struct {
			label string
			get   func(ColumnSummary) float64
		}{
			{"count", func(c ColumnSummary) float64 { return float64(c.Count) }},
			{"mean", func(c ColumnSummary) float64 { return c.Mean }},
			{"std", func(c ColumnSummary) float64 { return c.Std }},
			{"min", func(c ColumnSummary) float64 { return c.Min }},
			{"25%", func(c ColumnSummary) float64 { return c.Q1 }},
			{"50%", func(c ColumnSummary) float64 { return c.Q2 }},
			{"75%", func(c ColumnSummary) float64 { return c.Q3 }},
			{"max", func(c ColumnSummary) float64 { return c.Max }},
		}
		for _, row := range rows {
			b.WriteString("| " + row.label + " |")
			for _, c := range numeric {
				b.WriteString(fmt.Sprintf(" %.4g |", row.get(c)))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
