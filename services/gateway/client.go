// Package gateway is the HTTP client for the remote assessment API.
// Every failure is mapped onto the core error taxonomy so call sites
// can turn it into the right notification; nothing here retries on its
// own.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/session"
)

var (
	// ErrNoQuery distinguishes "no search issued yet" from a search
	// that matched nothing; the UI draws a different state for each.
	ErrNoQuery = errors.New("no search criteria provided")

	// ErrNotFound is returned when a scanned code maps to no
	// participant.
	ErrNotFound = errors.New("participant not found")
)

// sessionExpiredMessage is the API's 401 sentinel body.
const sessionExpiredMessage = "Unauthenticated."

type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Manager
	log      core.Logger
}

func NewClient(conf *core.Config, sessions *session.Manager, log core.Logger) *Client {
	return &Client{
		baseURL:  conf.API.BaseURL,
		http:     &http.Client{Timeout: conf.API.Timeout},
		sessions: sessions,
		log:      log,
	}
}

// messageResponse is the API's generic `{"message": "..."}` body.
type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// FetchParticipants lists participants for a track page by page. An
// empty filter short-circuits to ErrNoQuery without touching the
// network.
func (c *Client) FetchParticipants(ctx context.Context, track participant.Track, filter participant.SearchFilter, page int) (participant.Page, error) {
	var result participant.Page

	filter.Clean()
	if filter.IsEmpty() {
		return result, ErrNoQuery
	}

	q := filter.Values()
	q.Set("lokasi", string(track))
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if err := c.do(ctx, http.MethodGet, "/peserta", q, nil, &result); err != nil {
		return participant.Page{}, err
	}
	return result, nil
}

// FetchParticipantByRFID resolves a scanned code to a participant.
func (c *Client) FetchParticipantByRFID(ctx context.Context, code string) (participant.Participant, error) {
	var p participant.Participant
	q := url.Values{"rfid": []string{code}}
	err := c.do(ctx, http.MethodGet, "/peserta/rfid", q, nil, &p)
	if err != nil {
		if sErr, ok := errors.Cause(err).(*core.ServerError); ok && sErr.Code == http.StatusNotFound {
			return participant.Participant{}, ErrNotFound
		}
		return participant.Participant{}, err
	}
	return p, nil
}

// SubmitAcademicAssessment posts one participant's academic scores and
// returns the server's success message.
func (c *Client) SubmitAcademicAssessment(ctx context.Context, a participant.AcademicAssessment) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/penilaian-akademik", nil, a, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SubmitBehaviorAssessment posts one participant's behavioral notes.
func (c *Client) SubmitBehaviorAssessment(ctx context.Context, b participant.BehaviorAssessment) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/penilaian-akhlak", nil, b, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a session and installs it.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	body := map[string]string{
		"username": core.CleanString(username, true /* lower */),
		"password": password,
	}
	return c.login(ctx, "/login", body)
}

// LoginRFID authenticates with a scanned evaluator card.
func (c *Client) LoginRFID(ctx context.Context, code string) (session.Session, error) {
	return c.login(ctx, "/login-rfid", map[string]string{"rfid": code})
}

func (c *Client) login(ctx context.Context, path string, body interface{}) (session.Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return session.Session{}, err
	}

	sess := session.Session{Token: resp.Token, User: resp.User}
	if err := c.sessions.Login(sess); err != nil {
		return session.Session{}, errors.Wrap(err, "installing session")
	}
	return c.sessions.Current(), nil
}

// Logout tells the API to revoke the token, then clears the local
// session regardless: a dead server must not trap the user in a stale
// login.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
	if lErr := c.sessions.Logout(); lErr != nil {
		return lErr
	}
	if err != nil && !core.IsSessionExpired(err) {
		return err
	}
	return nil
}

// FetchStatistics pulls the server-computed summary for a track.
func (c *Client) FetchStatistics(ctx context.Context, track participant.Track) (participant.StatisticsSummary, error) {
	var s participant.StatisticsSummary
	if err := c.do(ctx, http.MethodGet, "/statistik/"+string(track), nil, nil, &s); err != nil {
		return participant.StatisticsSummary{}, err
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return errors.Wrapf(err, "encoding %s %s body", method, path)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reqBody)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var msg messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)

		if resp.StatusCode == http.StatusUnauthorized && msg.Message == sessionExpiredMessage {
			if c.sessions.Expire() {
				c.log.Info("session expired, credentials cleared")
			}
			return &core.SessionExpiredError{}
		}
		if msg.Message == "" {
			msg.Message = fmt.Sprintf("request failed (%s)", resp.Status)
		}
		return &core.ServerError{Code: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}
