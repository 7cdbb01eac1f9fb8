package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core/scanner"
	"github.com/psbppwb/penilaian/services/gateway"
)

// scan feeds keyboard-wedge input through the accumulator; every
// committed code is resolved against the API and added to the working
// set. A second scan of the same card is a no-op, never a removal.
func (cli *commandLine) scan() error {
	fmt.Fprintln(cli.out, "Scan participant cards (Ctrl+D to finish).")

	var scanErr error
	acc := scanner.New(cli.codeLen, cli.quiet, func(code string) {
		p, err := cli.api.FetchParticipantByRFID(context.Background(), code)
		if errors.Cause(err) == gateway.ErrNotFound {
			fmt.Fprintf(cli.out, "Unknown card %s\n", code)
			return
		}
		if err != nil {
			scanErr = err
			return
		}
		cli.queue.Add(p)
		fmt.Fprintf(cli.out, "Added %s (%s) - %d selected\n", p.Name, p.RegistrationNo, cli.queue.Len())
	})
	defer acc.Stop()

	in := bufio.NewReader(cli.scanIn)
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading scan input")
		}
		acc.Key(r)
		if scanErr != nil {
			return scanErr
		}
	}

	fmt.Fprintf(cli.out, "Working set: %d participant(s)\n", cli.queue.Len())
	return nil
}
