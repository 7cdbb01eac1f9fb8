package participant

import "github.com/volatiletech/null/v8"

// OutcomeTally aggregates assessment conclusions. Fields are null
// until the server has computed them.
type OutcomeTally struct {
	Pass            null.Int `json:"lulus"`
	Fail            null.Int `json:"tidak_lulus"`
	NeedsDiscussion null.Int `json:"musyawarah"`
	NotYetTested    null.Int `json:"belum_dites"`
}

// StatsBreakdown is one slice of the server-side statistics. All
// aggregation happens remotely; the client only caches and displays
// these values, so every field defaults to null rather than zero.
type StatsBreakdown struct {
	ActiveCount       null.Int `json:"jumlah_aktif"`
	MinScore          null.Int `json:"nilai_terendah"`
	MaxScore          null.Int `json:"nilai_tertinggi"`
	CountAtMin        null.Int `json:"jumlah_nilai_terendah"`
	CountAtMax        null.Int `json:"jumlah_nilai_tertinggi"`
	ScoredByEvaluator null.Int `json:"sudah_dinilai_guru"`

	Outcomes OutcomeTally `json:"kesimpulan"`
}

// StatisticsSummary is the per-track statistics shape: overall plus a
// per-gender breakdown. The zero value is the all-null default drawn
// before the first successful fetch.
type StatisticsSummary struct {
	Overall StatsBreakdown `json:"keseluruhan"`
	Male    StatsBreakdown `json:"putra"`
	Female  StatsBreakdown `json:"putri"`
}
