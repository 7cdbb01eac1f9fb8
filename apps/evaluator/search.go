package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/services/gateway"
)

func (cli *commandLine) search(track participant.Track, filter participant.SearchFilter, page int) error {
	result, err := cli.api.FetchParticipants(context.Background(), track, filter, page)
	if errors.Cause(err) == gateway.ErrNoQuery {
		// different from "no matches": nothing was asked yet
		fmt.Fprintln(cli.out, "Provide at least one filter (-nama, -no or -search).")
		return errHelp
	}
	if err != nil {
		return err
	}

	if len(result.Data) == 0 {
		fmt.Fprintln(cli.out, "No participants matched.")
		return nil
	}
	for _, p := range result.Data {
		marker := " "
		if cli.queue.IsSelected(p) {
			marker = "*"
		}
		fmt.Fprintf(cli.out, "%s %-10s %-25s %s\n", marker, p.RegistrationNo, p.Name, p.Gender)
	}
	fmt.Fprintf(cli.out, "Page %d/%d (%d total)\n", result.CurrentPage, result.LastPage, result.Total)
	return nil
}
