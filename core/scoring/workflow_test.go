package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/queue"
)

type fakeGateway struct {
	academicCalls int
	behaviorCalls int
	lastAcademic  participant.AcademicAssessment
	err           error
	message       string
	block         chan struct{} // when set, Submit blocks until closed
}

func (g *fakeGateway) SubmitAcademicAssessment(_ context.Context, a participant.AcademicAssessment) (string, error) {
	g.academicCalls++
	g.lastAcademic = a
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return "", g.err
	}
	return g.message, nil
}

func (g *fakeGateway) SubmitBehaviorAssessment(_ context.Context, b participant.BehaviorAssessment) (string, error) {
	g.behaviorCalls++
	if g.err != nil {
		return "", g.err
	}
	return g.message, nil
}

func setup(t *testing.T, track participant.Track, gw *fakeGateway) (*Workflow, *queue.Store) {
	t.Helper()
	validate, translator := core.NewValidator()
	participant.RegisterValidations(validate, translator)
	q := queue.NewStore()
	return NewWorkflow(q, gw, validate, translator, track, 42), q
}

func pst(id int, recs ...participant.AcademicRecord) participant.Participant {
	return participant.Participant{ID: id, Track: participant.TrackKediri, AcademicRecords: recs}
}

func intPtr(v int) *int { return &v }

func fillRubric(d *participant.Draft) {
	d.Tajwid = intPtr(80)
	d.Fashohah = intPtr(75)
	d.Kelancaran = intPtr(90)
	d.Makhraj = intPtr(85)
	d.Outcome = participant.OutcomePass
}

func TestWorkflow_Open_freshDraft(t *testing.T) {
	gw := &fakeGateway{}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1))

	before := time.Now()
	d, err := w.Open(0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if diff := d.StartedAt.Sub(before); diff < 0 || diff > time.Second {
		t.Errorf("fresh draft StartedAt off by %v, want within 1s of now", diff)
	}
	if d.ParticipantID != 1 || d.GuruID != 42 {
		t.Errorf("draft identity = (%d, %d), want (1, 42)", d.ParticipantID, d.GuruID)
	}
}

func TestWorkflow_Open_reopenContinuesElapsed(t *testing.T) {
	const priorMinutes = 7
	gw := &fakeGateway{}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1, participant.AcademicRecord{GuruID: 42, DurationMinutes: priorMinutes}))

	d, err := w.Open(0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	want := time.Now().Add(-priorMinutes * time.Minute)
	if diff := d.StartedAt.Sub(want); diff < -time.Second || diff > time.Second {
		t.Errorf("reopened StartedAt off by %v, want within 1s of now-%dm", diff, priorMinutes)
	}
	if d.DurationMinutes != priorMinutes {
		t.Errorf("draft DurationMinutes = %d, want %d", d.DurationMinutes, priorMinutes)
	}

	// editing fields and reopening must preserve the timestamp verbatim
	started := d.StartedAt
	d.Tajwid = intPtr(60)
	d2, err := w.Open(0)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	if d2 != d {
		t.Fatal("second Open() created a new draft")
	}
	if !d2.StartedAt.Equal(started) {
		t.Error("StartedAt recomputed on reopen")
	}
}

func TestWorkflow_Open_priorRecordByOtherEvaluator(t *testing.T) {
	gw := &fakeGateway{}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1, participant.AcademicRecord{GuruID: 99, DurationMinutes: 30}))

	d, err := w.Open(0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if diff := time.Since(d.StartedAt); diff > time.Second {
		t.Errorf("StartedAt off by %v; another evaluator's record must not be resumed", diff)
	}
}

func TestWorkflow_Submit_emptyRubricFailsWithoutNetwork(t *testing.T) {
	gw := &fakeGateway{}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1))
	if _, err := w.Open(0); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	_, err := w.Submit(context.Background(), 0)
	if !core.IsValidationError(err) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	if gw.academicCalls != 0 {
		t.Errorf("gateway called %d times on validation failure, want 0", gw.academicCalls)
	}
	if q.Len() != 1 {
		t.Errorf("queue len = %d after failed submit, want 1", q.Len())
	}
}

func TestWorkflow_Submit_deficiencyRule(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*participant.Draft)
		wantErr bool
	}{
		{
			name:    "fail outcome with all groups empty",
			mutate:  func(d *participant.Draft) { d.Outcome = participant.OutcomeFail },
			wantErr: true,
		},
		{
			name: "fail outcome with one group populated",
			mutate: func(d *participant.Draft) {
				d.Outcome = participant.OutcomeFail
				d.DeficiencyKelancaran = []string{"terbata-bata"}
			},
		},
		{
			name:   "pass outcome needs no deficiencies",
			mutate: func(d *participant.Draft) { d.Outcome = participant.OutcomePass },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{message: "tersimpan"}
			w, q := setup(t, participant.TrackKediri, gw)
			q.Add(pst(1))
			d, err := w.Open(0)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			fillRubric(d)
			tt.mutate(d)

			_, err = w.Submit(context.Background(), 0)
			if tt.wantErr {
				if !core.IsValidationError(err) {
					t.Fatalf("Submit() error = %v, want ValidationError", err)
				}
				if gw.academicCalls != 0 {
					t.Errorf("gateway called on validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
			if gw.academicCalls != 1 {
				t.Errorf("gateway called %d times, want 1", gw.academicCalls)
			}
		})
	}
}

func TestWorkflow_Submit_networkFailureKeepsDraft(t *testing.T) {
	gw := &fakeGateway{err: core.NewNetworkError(errors.New("connection refused"))}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1))
	d, err := w.Open(0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	fillRubric(d)

	_, err = w.Submit(context.Background(), 0)
	if !core.IsNetworkError(err) {
		t.Fatalf("Submit() error = %v, want NetworkError", err)
	}
	if q.Len() != 1 {
		t.Errorf("participant removed on network failure")
	}
	if _, ok := q.DraftFor(1); !ok {
		t.Error("draft dropped on network failure; retry would lose data")
	}

	// manual retry succeeds without re-entry
	gw.err = nil
	gw.message = "tersimpan"
	msg, err := w.Submit(context.Background(), 0)
	if err != nil {
		t.Fatalf("retry Submit() failed: %v", err)
	}
	if msg != "tersimpan" {
		t.Errorf("Submit() message = %q, want %q", msg, "tersimpan")
	}
	if q.Len() != 0 {
		t.Errorf("queue len = %d after successful retry, want 0", q.Len())
	}
}

func TestWorkflow_durationPolicy(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	tests := []struct {
		name    string
		track   participant.Track
		prior   int // stored duration from an earlier assessment; 0 = none
		elapsed time.Duration
		want    int
	}{
		{name: "kediri recomputes over stored duration", track: participant.TrackKediri, prior: 12, elapsed: 5 * time.Minute, want: 17},
		{name: "kertosono reuses stored duration", track: participant.TrackKertosono, prior: 12, elapsed: 5 * time.Minute, want: 12},
		{name: "kertosono recomputes without stored duration", track: participant.TrackKertosono, elapsed: 5 * time.Minute, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
			nowFunc = func() time.Time { return base }

			gw := &fakeGateway{message: "ok"}
			w, q := setup(t, tt.track, gw)
			if tt.prior > 0 {
				q.Add(pst(1, participant.AcademicRecord{GuruID: 42, DurationMinutes: tt.prior}))
			} else {
				q.Add(pst(1))
			}
			d, err := w.Open(0)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			fillRubric(d)

			nowFunc = func() time.Time { return base.Add(tt.elapsed) }
			if _, err := w.Submit(context.Background(), 0); err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
			if got := gw.lastAcademic.DurationMinutes; got != tt.want {
				t.Errorf("submitted DurationMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWorkflow_queueDrainScenario(t *testing.T) {
	gw := &fakeGateway{message: "tersimpan"}
	w, q := setup(t, participant.TrackKediri, gw)
	for _, id := range []int{1, 2, 3} { // A, B, C
		q.Add(pst(id))
	}
	q.SetActiveIndex(2)

	d, err := w.Open(2)
	if err != nil {
		t.Fatalf("Open(C) failed: %v", err)
	}
	fillRubric(d)
	if _, err := w.Submit(context.Background(), 2); err != nil {
		t.Fatalf("Submit(C) failed: %v", err)
	}
	if got := q.ActiveIndex(); got != 1 {
		t.Errorf("ActiveIndex() after submitting C = %d, want 1", got)
	}
	if _, ok := w.ExitRoute(ActionAcademic); ok {
		t.Error("ExitRoute() fired with participants still queued")
	}

	if err := w.Cancel(1); err != nil {
		t.Fatalf("Cancel(B) failed: %v", err)
	}
	if got := q.ActiveIndex(); got != 0 {
		t.Errorf("ActiveIndex() after cancelling B = %d, want 0", got)
	}

	if err := w.Cancel(0); err != nil {
		t.Fatalf("Cancel(A) failed: %v", err)
	}
	route, ok := w.ExitRoute(ActionAcademic)
	if !ok {
		t.Fatal("ExitRoute() = false on empty queue, want redirect")
	}
	if want := "/peserta/kediri?action=penilaian-akademik"; route != want {
		t.Errorf("ExitRoute() = %q, want %q", route, want)
	}
}

func TestWorkflow_Cancel_rejectedWhileSubmitting(t *testing.T) {
	gw := &fakeGateway{message: "ok", block: make(chan struct{})}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1))
	d, err := w.Open(0)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	fillRubric(d)

	submitDone := make(chan struct{})
	go func() {
		defer close(submitDone)
		_, _ = w.Submit(context.Background(), 0)
	}()

	// wait for the submit goroutine to reach the gateway
	for i := 0; i < 100; i++ {
		if w.Status(1) == StatusSubmitting {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := w.Cancel(0); err != ErrSubmitting {
		t.Errorf("Cancel() during submit error = %v, want ErrSubmitting", err)
	}

	close(gw.block)
	<-submitDone
	if q.Len() != 0 {
		t.Errorf("queue len = %d after submit finished, want 0", q.Len())
	}
}

func TestWorkflow_Submit_survivesConcurrentCancel(t *testing.T) {
	gw := &fakeGateway{message: "tersimpan", block: make(chan struct{})}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1)) // A
	q.Add(pst(2)) // B

	d, err := w.Open(1)
	if err != nil {
		t.Fatalf("Open(B) failed: %v", err)
	}
	fillRubric(d)

	submitDone := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), 1)
		submitDone <- err
	}()
	for i := 0; i < 100; i++ {
		if w.Status(2) == StatusSubmitting {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// A's form stays interactive while B is in flight; cancelling it
	// shifts B down to index 0 under the submit
	if err := w.Cancel(0); err != nil {
		t.Fatalf("Cancel(A) during B's submit failed: %v", err)
	}

	close(gw.block)
	if err := <-submitDone; err != nil {
		t.Fatalf("Submit(B) failed: %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("queue len = %d after submit, want 0", q.Len())
	}
	if i := q.IndexOf(2); i != -1 {
		t.Errorf("IndexOf(B) = %d, want removed", i)
	}
	if _, ok := q.DraftFor(2); ok {
		t.Error("B's draft survived its successful submit")
	}
}

func TestWorkflow_SubmitBehavior_failureKeepsNotes(t *testing.T) {
	gw := &fakeGateway{err: core.NewNetworkError(errors.New("connection refused"))}
	w, q := setup(t, participant.TrackKertosono, gw)
	q.Add(pst(1))
	if _, err := w.Open(0); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	const notes = "rajin dan sopan"
	if _, err := w.SubmitBehavior(context.Background(), 0, notes); !core.IsNetworkError(err) {
		t.Fatalf("SubmitBehavior() error = %v, want NetworkError", err)
	}
	d, ok := q.DraftFor(1)
	if !ok {
		t.Fatal("draft dropped on network failure")
	}
	if d.BehaviorNotes != notes {
		t.Errorf("draft BehaviorNotes = %q, want %q", d.BehaviorNotes, notes)
	}

	gw.err = nil
	gw.message = "ok"
	if _, err := w.SubmitBehavior(context.Background(), 0, d.BehaviorNotes); err != nil {
		t.Fatalf("retry SubmitBehavior() failed: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("queue len = %d after retry, want 0", q.Len())
	}
}

func TestWorkflow_SubmitBehavior(t *testing.T) {
	gw := &fakeGateway{message: "ok"}
	w, q := setup(t, participant.TrackKertosono, gw)
	q.Add(pst(1))

	if _, err := w.SubmitBehavior(context.Background(), 0, "  "); !core.IsValidationError(err) {
		t.Fatalf("SubmitBehavior(blank) error = %v, want ValidationError", err)
	}
	if gw.behaviorCalls != 0 {
		t.Errorf("gateway called on validation failure")
	}

	if _, err := w.SubmitBehavior(context.Background(), 0, "rajin dan sopan"); err != nil {
		t.Fatalf("SubmitBehavior() failed: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("queue len = %d after behavior submit, want 0", q.Len())
	}
}

func TestWorkflow_WatchElapsed_stopIsIdempotent(t *testing.T) {
	gw := &fakeGateway{}
	w, q := setup(t, participant.TrackKediri, gw)
	q.Add(pst(1))
	if _, err := w.Open(0); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	stop := w.WatchElapsed(1, func(time.Duration) {})
	stop()
	stop() // second stop must not panic or block
}
