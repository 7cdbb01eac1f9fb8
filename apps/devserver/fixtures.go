package main

import (
	"log"
	"sync"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/psbppwb/penilaian/core/participant"
)

type user struct {
	ID           int
	Name         string
	Username     string
	RFID         string
	Roles        []string
	passwordHash []byte
}

func (u *user) setPassword(pwd string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost) // dev stub; cheap on purpose
	if err != nil {
		log.Fatalf("fixtures.bcrypt: %v", err)
	}
	u.passwordHash = hash
}

func (u *user) checkPassword(pwd string) bool {
	return bcrypt.CompareHashAndPassword(u.passwordHash, []byte(pwd)) == nil
}

type fixtures struct {
	mu           sync.Mutex
	users        []*user
	participants []participant.Participant
	stats        map[participant.Track]participant.StatisticsSummary
}

func newFixtures() *fixtures {
	f := &fixtures{
		users: []*user{
			{ID: 1, Name: "Ust. Hasan", Username: "ust.hasan", RFID: "1000000001", Roles: []string{"kediri:guru"}},
			{ID: 2, Name: "Ust. Salim", Username: "ust.salim", RFID: "1000000002", Roles: []string{"kertosono:guru"}},
			{ID: 3, Name: "Bu Aminah", Username: "bu.aminah", RFID: "1000000003", Roles: []string{"kediri:admin", "kertosono:admin"}},
			{ID: 4, Name: "Pak Karim", Username: "pak.karim", RFID: "1000000004", Roles: []string{"superadmin"}},
			{ID: 5, Name: "Kang Rofiq", Username: "kang.rofiq", RFID: "1000000005", Roles: []string{"komandan"}},
		},
		participants: []participant.Participant{
			{ID: 101, RegistrationNo: "KD-0101", Name: "Ahmad Fauzi", Gender: "putra", Track: participant.TrackKediri, RFID: "2000000101"},
			{ID: 102, RegistrationNo: "KD-0102", Name: "Budi Santoso", Gender: "putra", Track: participant.TrackKediri, RFID: "2000000102"},
			{ID: 103, RegistrationNo: "KD-0103", Name: "Citra Lestari", Gender: "putri", Track: participant.TrackKediri, RFID: "2000000103",
				AcademicRecords: []participant.AcademicRecord{{GuruID: 1, Outcome: participant.OutcomeDiscuss, DurationMinutes: 9}}},
			{ID: 201, RegistrationNo: "KT-0201", Name: "Dewi Anggraini", Gender: "putri", Track: participant.TrackKertosono, RFID: "2000000201"},
			{ID: 202, RegistrationNo: "KT-0202", Name: "Eko Prasetyo", Gender: "putra", Track: participant.TrackKertosono, RFID: "2000000202",
				AcademicRecords: []participant.AcademicRecord{{GuruID: 2, Outcome: participant.OutcomeFail, DurationMinutes: 14}}},
		},
		stats: make(map[participant.Track]participant.StatisticsSummary),
	}
	for _, u := range f.users {
		u.setPassword("rahasia")
	}

	kediri := participant.StatisticsSummary{}
	kediri.Overall.ActiveCount = null.IntFrom(3)
	kediri.Overall.MinScore = null.IntFrom(55)
	kediri.Overall.MaxScore = null.IntFrom(92)
	kediri.Overall.Outcomes.Pass = null.IntFrom(1)
	kediri.Overall.Outcomes.NeedsDiscussion = null.IntFrom(1)
	kediri.Overall.Outcomes.NotYetTested = null.IntFrom(1)
	f.stats[participant.TrackKediri] = kediri

	kertosono := participant.StatisticsSummary{}
	kertosono.Overall.ActiveCount = null.IntFrom(2)
	kertosono.Overall.Outcomes.Fail = null.IntFrom(1)
	kertosono.Overall.Outcomes.NotYetTested = null.IntFrom(1)
	f.stats[participant.TrackKertosono] = kertosono

	return f
}

func (f *fixtures) userByUsername(username string) (*user, bool) {
	for _, u := range f.users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

func (f *fixtures) userByRFID(code string) (*user, bool) {
	for _, u := range f.users {
		if u.RFID == code {
			return u, true
		}
	}
	return nil, false
}

func (f *fixtures) participantByRFID(code string) (participant.Participant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.RFID == code {
			return p, true
		}
	}
	return participant.Participant{}, false
}
