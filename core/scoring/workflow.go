// Package scoring drives the per-participant batch-scoring workflow:
// draft lifecycle, elapsed-time tracking, validation, submission and
// queue advancement.
package scoring

import (
	"context"
	"math"
	"net/url"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/queue"
)

var (
	// ErrEmptyQueue is a routing condition, not a store error: trying
	// to score with nothing selected sends the user back to the
	// listing.
	ErrEmptyQueue = errors.New("no participants selected")

	// ErrSubmitting rejects queue mutations for a participant whose
	// submission is in flight. Submitting is exclusive per participant,
	// not system-wide; other forms stay interactive.
	ErrSubmitting = errors.New("submission in progress")

	nowFunc = time.Now // mockable
)

// Status of one queued participant within the workflow.
type Status int

const (
	StatusUnscored Status = iota
	StatusScoring
	StatusSubmitting
)

// Action names which screen the evaluator was working in; it is
// round-tripped through the exit route's query string so cancelling
// out of an empty queue lands back in the equivalent listing context.
type Action string

const (
	ActionDetail   Action = "detail"
	ActionAcademic Action = "penilaian-akademik"
	ActionBehavior Action = "penilaian-akhlak"
)

// Gateway is the slice of the remote API the workflow needs.
type Gateway interface {
	SubmitAcademicAssessment(ctx context.Context, a participant.AcademicAssessment) (string, error)
	SubmitBehaviorAssessment(ctx context.Context, b participant.BehaviorAssessment) (string, error)
}

// Workflow runs batch scoring over a queue for one evaluator on one
// track.
type Workflow struct {
	queue      *queue.Store
	gw         Gateway
	validate   *validator.Validate
	translator ut.Translator
	track      participant.Track
	guruID     int

	mu         sync.Mutex
	submitting map[int]bool
}

func NewWorkflow(
	q *queue.Store,
	gw Gateway,
	validate *validator.Validate,
	translator ut.Translator,
	track participant.Track,
	guruID int,
) *Workflow {
	return &Workflow{
		queue:      q,
		gw:         gw,
		validate:   validate,
		translator: translator,
		track:      track,
		guruID:     guruID,
		submitting: make(map[int]bool),
	}
}

// Open enters the scoring screen for the participant at index i,
// lazily creating the draft. When the participant already holds an
// assessment by this evaluator, the start timestamp is reconstructed
// as now minus the recorded duration so the elapsed counter continues
// accumulating instead of restarting; this happens once, at draft
// creation, and editing fields never recomputes it.
func (w *Workflow) Open(i int) (*participant.Draft, error) {
	p, ok := w.queue.At(i)
	if !ok {
		return nil, ErrEmptyQueue
	}
	if d, ok := w.queue.DraftFor(p.ID); ok {
		return d, nil
	}

	d := &participant.Draft{StartedAt: nowFunc()}
	d.ParticipantID = p.ID
	d.GuruID = w.guruID
	if rec, ok := p.PriorRecordBy(w.guruID); ok && rec.DurationMinutes > 0 {
		d.StartedAt = nowFunc().Add(-time.Duration(rec.DurationMinutes) * time.Minute)
		d.DurationMinutes = rec.DurationMinutes
	}
	w.queue.SetDraft(p.ID, d)
	return d, nil
}

// Status reports where the participant with the given id stands.
func (w *Workflow) Status(id int) Status {
	w.mu.Lock()
	sub := w.submitting[id]
	w.mu.Unlock()
	if sub {
		return StatusSubmitting
	}
	if _, ok := w.queue.DraftFor(id); ok {
		return StatusScoring
	}
	return StatusUnscored
}

// Elapsed returns how long the participant has been under assessment.
func (w *Workflow) Elapsed(id int) time.Duration {
	d, ok := w.queue.DraftFor(id)
	if !ok {
		return 0
	}
	return nowFunc().Sub(d.StartedAt)
}

// Submit validates and submits the academic assessment for the
// participant at index i. Validation failures surface field errors and
// make no network call; network failures leave the draft and queue
// untouched so the evaluator can retry without re-entering anything.
// On success the participant is removed and the server's message is
// returned for display.
func (w *Workflow) Submit(ctx context.Context, i int) (string, error) {
	p, ok := w.queue.At(i)
	if !ok {
		return "", ErrEmptyQueue
	}
	d, ok := w.queue.DraftFor(p.ID)
	if !ok {
		return "", errors.Wrapf(ErrEmptyQueue, "no draft for participant %d", p.ID)
	}

	a := d.AcademicAssessment
	a.DurationMinutes = w.durationMinutes(d)
	if err := w.validateStruct(&a); err != nil {
		return "", err
	}

	if err := w.beginSubmit(p.ID); err != nil {
		return "", err
	}
	defer w.endSubmit(p.ID)

	msg, err := w.gw.SubmitAcademicAssessment(ctx, a)
	if err != nil {
		return "", err
	}
	// remove by id, not by the captured index: other participants'
	// forms stay interactive while this one is in flight, so i may
	// have gone stale
	w.queue.Remove(p.ID)
	return msg, nil
}

// SubmitBehavior submits the behavioral notes for the participant at
// index i, with the same queue mechanics as Submit. The notes are kept
// on the draft before the network call, so a failed submission leaves
// them in place for the retry.
func (w *Workflow) SubmitBehavior(ctx context.Context, i int, notes string) (string, error) {
	p, ok := w.queue.At(i)
	if !ok {
		return "", ErrEmptyQueue
	}

	b := participant.BehaviorAssessment{
		ParticipantID: p.ID,
		GuruID:        w.guruID,
		Notes:         notes,
	}
	if err := w.validateStruct(&b); err != nil {
		return "", err
	}
	if d, ok := w.queue.DraftFor(p.ID); ok {
		d.BehaviorNotes = b.Notes
	}

	if err := w.beginSubmit(p.ID); err != nil {
		return "", err
	}
	defer w.endSubmit(p.ID)

	msg, err := w.gw.SubmitBehaviorAssessment(ctx, b)
	if err != nil {
		return "", err
	}
	w.queue.Remove(p.ID)
	return msg, nil
}

// Cancel removes the participant at index i without submitting
// anything ("batal"): same queue mechanics as a successful submit, no
// network call.
func (w *Workflow) Cancel(i int) error {
	p, ok := w.queue.At(i)
	if !ok {
		return ErrEmptyQueue
	}

	w.mu.Lock()
	sub := w.submitting[p.ID]
	w.mu.Unlock()
	if sub {
		return ErrSubmitting
	}

	w.queue.Remove(p.ID)
	return nil
}

// ExitRoute reports whether the queue has emptied out and, if so, the
// listing route for the current track with the in-progress action
// preserved as a query parameter.
func (w *Workflow) ExitRoute(action Action) (string, bool) {
	if w.queue.Len() > 0 {
		return "", false
	}
	q := url.Values{"action": []string{string(action)}}
	return "/peserta/" + string(w.track) + "?" + q.Encode(), true
}

// WatchElapsed polls the participant's elapsed time once per second
// and reports it to fn. The returned stop func must be called on
// unmount or participant switch so no ticker leaks across draft
// contexts.
func (w *Workflow) WatchElapsed(id int, fn func(time.Duration)) (stop func()) {
	ticker := time.NewTicker(time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn(w.Elapsed(id))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// durationMinutes applies the per-track duration policy: Kediri always
// recomputes the elapsed minutes from the draft's start timestamp,
// while Kertosono treats a previously stored duration as final and
// only recomputes when none exists.
func (w *Workflow) durationMinutes(d *participant.Draft) int {
	if w.track == participant.TrackKertosono && d.DurationMinutes > 0 {
		return d.DurationMinutes
	}
	mins := int(math.Round(nowFunc().Sub(d.StartedAt).Minutes()))
	if mins < 0 {
		mins = 0
	}
	return mins
}

type validatable interface {
	Validate(*validator.Validate) error
}

func (w *Workflow) validateStruct(v validatable) error {
	err := v.Validate(w.validate)
	if err == nil {
		return nil
	}
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		return core.NewValidationError(err, core.TranslateValidationErrors(vErrs, w.translator)...)
	}
	return err
}

func (w *Workflow) beginSubmit(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting[id] {
		return ErrSubmitting
	}
	w.submitting[id] = true
	return nil
}

func (w *Workflow) endSubmit(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.submitting, id)
}
