package participant

import (
	"encoding/json"
	"net/url"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/psbppwb/penilaian/core"
)

// Track identifies one of the two parallel admission pipelines.
type Track string

const (
	TrackKediri    Track = "kediri"
	TrackKertosono Track = "kertosono"
)

var Tracks = []Track{TrackKediri, TrackKertosono}

func (t Track) Valid() bool {
	return t == TrackKediri || t == TrackKertosono
}

// Outcome is the conclusion of an academic assessment.
type Outcome string

const (
	OutcomePass         Outcome = "lulus"
	OutcomeFail         Outcome = "tidak_lulus"
	OutcomeDiscuss      Outcome = "musyawarah"
	OutcomeNotYetTested Outcome = "belum_dites"
)

// AcademicRecord is a previously submitted academic assessment as
// returned by the API alongside a participant.
type AcademicRecord struct {
	GuruID          int     `json:"guru_id"`
	Outcome         Outcome `json:"kesimpulan"`
	DurationMinutes int     `json:"durasi_penilaian"`
}

// Participant is an admission candidate. The core never mutates its
// identity fields; scoring results are only appended via submission.
type Participant struct {
	ID              int              `json:"id"`
	RegistrationNo  string           `json:"no_pendaftaran"`
	Name            string           `json:"nama"`
	Gender          string           `json:"jenis_kelamin"`
	Track           Track            `json:"lokasi_tes"`
	RFID            string           `json:"rfid"`
	AcademicRecords []AcademicRecord `json:"penilaian_akademik"`
	// Extra carries track-specific fields the core does not interpret.
	Extra json.RawMessage `json:"data_tambahan,omitempty"`
}

// PriorRecordBy returns the participant's earlier academic assessment
// by the given evaluator, if any.
func (p Participant) PriorRecordBy(guruID int) (AcademicRecord, bool) {
	for _, rec := range p.AcademicRecords {
		if rec.GuruID == guruID {
			return rec, true
		}
	}
	return AcademicRecord{}, false
}

// SearchFilter narrows a participant listing query.
// An empty filter means "no query issued yet" and must be kept
// distinguishable from a query that matched nothing.
type SearchFilter struct {
	Search         string `query:"search"`
	RegistrationNo string `query:"no_pendaftaran"`
	Name           string `query:"nama"`
	Category       string `query:"kategori"`
	Gender         string `query:"jenis_kelamin"`
}

func (f *SearchFilter) IsEmpty() bool {
	return f.Search == "" && f.RegistrationNo == "" && f.Name == "" && f.Category == "" && f.Gender == ""
}

func (f *SearchFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.RegistrationNo = core.CleanString(f.RegistrationNo)
	f.Name = core.CleanString(f.Name)
	f.Category = core.CleanString(f.Category, true /* lower */)
	f.Gender = core.CleanString(f.Gender, true /* lower */)
}

// Values encodes the filter as `filter[...]` query params.
func (f *SearchFilter) Values() url.Values {
	v := make(url.Values)
	set := func(key, val string) {
		if val != "" {
			v.Set("filter["+key+"]", val)
		}
	}
	set("search", f.Search)
	set("no_pendaftaran", f.RegistrationNo)
	set("nama", f.Name)
	set("kategori", f.Category)
	set("jenis_kelamin", f.Gender)
	return v
}

// Page is one page of a participant listing.
type Page struct {
	Data        []Participant `json:"data"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
	Total       int           `json:"total"`
}

// AcademicAssessment is the payload submitted at the end of an
// academic (reading) scoring session. All four rubric scores are
// required; the deficiency groups are required collectively (at least
// one selection across the four) only when the outcome is a fail.
type AcademicAssessment struct {
	ParticipantID int `json:"peserta_id" validate:"required"`
	GuruID        int `json:"guru_id" validate:"required"`

	Tajwid     *int `json:"nilai_tajwid" validate:"required,min=0,max=100"`
	Fashohah   *int `json:"nilai_fashohah" validate:"required,min=0,max=100"`
	Kelancaran *int `json:"nilai_kelancaran" validate:"required,min=0,max=100"`
	Makhraj    *int `json:"nilai_makhraj" validate:"required,min=0,max=100"`

	Outcome Outcome `json:"kesimpulan" validate:"required,oneof=lulus tidak_lulus musyawarah"`

	DeficiencyTajwid     []string `json:"kekurangan_tajwid"`
	DeficiencyFashohah   []string `json:"kekurangan_fashohah"`
	DeficiencyKelancaran []string `json:"kekurangan_kelancaran"`
	DeficiencyMakhraj    []string `json:"kekurangan_makhraj"`

	Notes               string `json:"catatan"`
	RecommendWithdrawal bool   `json:"rekomendasi_mundur"`
	DurationMinutes     int    `json:"durasi_penilaian" validate:"min=0"`
}

func (a *AcademicAssessment) Validate(validate *validator.Validate) error {
	a.Notes = core.CleanString(a.Notes)
	return validate.Struct(a)
}

// BehaviorAssessment is the payload of a behavioral scoring session.
type BehaviorAssessment struct {
	ParticipantID int    `json:"peserta_id" validate:"required"`
	GuruID        int    `json:"guru_id" validate:"required"`
	Notes         string `json:"catatan" validate:"required"`
}

func (b *BehaviorAssessment) Validate(validate *validator.Validate) error {
	b.Notes = core.CleanString(b.Notes)
	return validate.Struct(b)
}

// Draft is the in-progress, unsaved scoring state for one queued
// participant. StartedAt is computed once when the draft is created
// and is never recomputed on edits.
type Draft struct {
	AcademicAssessment
	BehaviorNotes string
	StartedAt     time.Time
}

// deficiencyRequiredTag fires when a fail outcome carries no
// deficiency selection in any of the four groups. The groups are OR'd:
// populating a single one satisfies the rule.
const deficiencyRequiredTag = "deficiency_required"

const deficiencyRequiredText = "select at least one deficiency when the outcome is a fail"

// RegisterValidations wires the assessment struct-level rules and
// their translations into the shared validator.
func RegisterValidations(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(academicAssessmentValidation, AcademicAssessment{})
	core.RegisterCustomTranslation(validate, translator, deficiencyRequiredTag, deficiencyRequiredText)
}

func academicAssessmentValidation(sl validator.StructLevel) {
	a := sl.Current().Interface().(AcademicAssessment)
	if a.Outcome != OutcomeFail {
		return
	}
	if len(a.DeficiencyTajwid)+len(a.DeficiencyFashohah)+len(a.DeficiencyKelancaran)+len(a.DeficiencyMakhraj) > 0 {
		return
	}
	sl.ReportError(a.DeficiencyTajwid, "DeficiencyTajwid", "kekurangan_tajwid", deficiencyRequiredTag, "")
}
