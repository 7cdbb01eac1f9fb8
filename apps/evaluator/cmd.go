package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/queue"
	"github.com/psbppwb/penilaian/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// apiClient is the slice of the gateway the CLI drives.
type apiClient interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	LoginRFID(ctx context.Context, code string) (session.Session, error)
	Logout(ctx context.Context) error
	FetchParticipants(ctx context.Context, track participant.Track, filter participant.SearchFilter, page int) (participant.Page, error)
	FetchParticipantByRFID(ctx context.Context, code string) (participant.Participant, error)
	FetchStatistics(ctx context.Context, track participant.Track) (participant.StatisticsSummary, error)
}

// statsCache is the persisted statistics store the stats command falls
// back to when offline.
type statsCache interface {
	LoadStatistics(track participant.Track) (participant.StatisticsSummary, error)
	SaveStatistics(track participant.Track, sum participant.StatisticsSummary) error
}

type commandLine struct {
	api      apiClient
	sessions *session.Manager
	queue    *queue.Store
	stats    statsCache
	scanIn   io.Reader // keystroke source for the scan command
	out      io.Writer
	codeLen  int
	quiet    time.Duration // scanner burst separator
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME          - log in; the password is prompted next")
	fmt.Fprintln(cli.out, "  login-rfid -rfid CODE             - log in with an evaluator card")
	fmt.Fprintln(cli.out, "  logout                            - log out and clear the stored session")
	fmt.Fprintln(cli.out, "  whoami                            - show the active session")
	fmt.Fprintln(cli.out, "  search -lokasi TRACK [filters]    - list participants (needs at least one filter)")
	fmt.Fprintln(cli.out, "  scan                              - read participant cards from the keyboard wedge")
	fmt.Fprintln(cli.out, "  stats -lokasi TRACK               - show a track's statistics (cached when offline)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The evaluator's username. The password will be prompted next.")

	loginRFIDCmd := flag.NewFlagSet("login-rfid", flag.ExitOnError)
	loginRFIDCode := loginRFIDCmd.String("rfid", "", "The evaluator card's code.")

	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)
	searchTrack := searchCmd.String("lokasi", string(participant.TrackKediri), "Track: kediri or kertosono.")
	searchName := searchCmd.String("nama", "", "Filter by participant name.")
	searchRegNo := searchCmd.String("no", "", "Filter by registration number.")
	searchText := searchCmd.String("search", "", "Free-text search.")
	searchPage := searchCmd.Int("page", 1, "Result page.")

	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)
	statsTrack := statsCmd.String("lokasi", string(participant.TrackKediri), "Track: kediri or kertosono.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginUname, string(pwd))
	case "login-rfid":
		if err := loginRFIDCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginRFIDCode == "" {
			loginRFIDCmd.Usage()
			return errHelp
		}
		return cli.loginRFID(*loginRFIDCode)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "search":
		if err := searchCmd.Parse(args[2:]); err != nil {
			return err
		}
		filter := participant.SearchFilter{
			Search:         *searchText,
			Name:           *searchName,
			RegistrationNo: *searchRegNo,
		}
		return cli.search(participant.Track(*searchTrack), filter, *searchPage)
	case "scan":
		return cli.scan()
	case "stats":
		if err := statsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.showStats(participant.Track(*statsTrack))
	default:
		cli.printUsage()
		return errHelp
	}
}
