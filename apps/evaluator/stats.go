package main

import (
	"context"
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/participant"
)

// showStats fetches a track's statistics, caching them locally; when
// the network is down the last cached snapshot is shown instead.
func (cli *commandLine) showStats(track participant.Track) error {
	if !track.Valid() {
		return fmt.Errorf("unknown track %q", track)
	}

	sum, err := cli.api.FetchStatistics(context.Background(), track)
	switch {
	case err == nil:
		if err := cli.stats.SaveStatistics(track, sum); err != nil {
			return err
		}
	case core.IsNetworkError(err):
		cached, cErr := cli.stats.LoadStatistics(track)
		if cErr != nil {
			return cErr
		}
		sum = cached
		fmt.Fprintln(cli.out, "(offline: showing cached statistics)")
	default:
		return err
	}

	fmt.Fprintf(cli.out, "Statistics - %s\n", track)
	printBreakdown(cli, "Overall", sum.Overall)
	printBreakdown(cli, "Putra", sum.Male)
	printBreakdown(cli, "Putri", sum.Female)
	return nil
}

func printBreakdown(cli *commandLine, label string, b participant.StatsBreakdown) {
	fmt.Fprintf(cli.out, "  %s:\n", label)
	fmt.Fprintf(cli.out, "    Active: %s  Min: %s  Max: %s\n", fmtNull(b.ActiveCount), fmtNull(b.MinScore), fmtNull(b.MaxScore))
	fmt.Fprintf(cli.out, "    Outcomes: lulus=%s tidak_lulus=%s musyawarah=%s belum=%s\n",
		fmtNull(b.Outcomes.Pass), fmtNull(b.Outcomes.Fail), fmtNull(b.Outcomes.NeedsDiscussion), fmtNull(b.Outcomes.NotYetTested))
}

func fmtNull(v null.Int) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", v.Int)
}
