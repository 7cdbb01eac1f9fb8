package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/psbppwb/penilaian/core"
	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/session"
)

const perPage = 15

var errInvalidCredentials = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RFID     string `json:"rfid"`
}

func (s *server) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}

	usr, ok := s.data.userByUsername(core.CleanString(data.Username, true /* lower */))
	if !ok || !usr.checkPassword(data.Password) {
		return errInvalidCredentials
	}
	return s.loginResponse(ctx, usr)
}

func (s *server) loginRFID(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}

	usr, ok := s.data.userByRFID(core.CleanString(data.RFID))
	if !ok {
		return errInvalidCredentials
	}
	return s.loginResponse(ctx, usr)
}

func (s *server) loginResponse(ctx echo.Context, usr *user) error {
	now := time.Now()
	cl := &claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    s.opts.Conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(12 * time.Hour).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Name:     usr.Name,
		Roles:    usr.Roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString([]byte(s.opts.Conf.SecretKey))
	if err != nil {
		return errors.Wrap(err, "signing token")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": session.User{
			ID:       usr.ID,
			Name:     usr.Name,
			Username: usr.Username,
			Roles:    usr.Roles,
		},
	})
}

func (s *server) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Anda telah keluar."})
}

func (s *server) listParticipants(ctx echo.Context) error {
	track := participant.Track(ctx.QueryParam("lokasi"))

	filter := participant.SearchFilter{
		Search:         ctx.QueryParam("filter[search]"),
		RegistrationNo: ctx.QueryParam("filter[no_pendaftaran]"),
		Name:           ctx.QueryParam("filter[nama]"),
		Category:       ctx.QueryParam("filter[kategori]"),
		Gender:         ctx.QueryParam("filter[jenis_kelamin]"),
	}
	filter.Clean()

	// submitAcademic mutates the same slice under this lock
	s.data.mu.Lock()
	var matched []participant.Participant
	for _, p := range s.data.participants {
		if track.Valid() && p.Track != track {
			continue
		}
		if matches(p, filter) {
			matched = append(matched, p)
		}
	}
	s.data.mu.Unlock()

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	lastPage := (len(matched) + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	lo := (page - 1) * perPage
	hi := lo + perPage
	if lo > len(matched) {
		lo = len(matched)
	}
	if hi > len(matched) {
		hi = len(matched)
	}

	data := matched[lo:hi]
	if data == nil {
		data = []participant.Participant{}
	}
	return ctx.JSON(http.StatusOK, participant.Page{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage,
		Total:       len(matched),
	})
}

func matches(p participant.Participant, f participant.SearchFilter) bool {
	contains := func(hay, needle string) bool {
		return needle == "" || strings.Contains(strings.ToLower(hay), strings.ToLower(needle))
	}
	if !contains(p.Name+" "+p.RegistrationNo, f.Search) {
		return false
	}
	if f.RegistrationNo != "" && !strings.EqualFold(p.RegistrationNo, f.RegistrationNo) {
		return false
	}
	if !contains(p.Name, f.Name) {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	return true
}

func (s *server) participantByRFID(ctx echo.Context) error {
	p, ok := s.data.participantByRFID(core.CleanString(ctx.QueryParam("rfid")))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "peserta tidak ditemukan")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (s *server) submitAcademic(ctx echo.Context) error {
	var data participant.AcademicAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcademicAssessment")
	}
	if data.ParticipantID == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "peserta_id wajib diisi")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	for i := range s.data.participants {
		if s.data.participants[i].ID != data.ParticipantID {
			continue
		}
		recs := s.data.participants[i].AcademicRecords
		rec := participant.AcademicRecord{
			GuruID:          data.GuruID,
			Outcome:         data.Outcome,
			DurationMinutes: data.DurationMinutes,
		}
		replaced := false
		for j := range recs {
			if recs[j].GuruID == data.GuruID {
				recs[j] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			recs = append(recs, rec)
		}
		s.data.participants[i].AcademicRecords = recs
		return ctx.JSON(http.StatusOK, echo.Map{"message": "Penilaian akademik tersimpan."})
	}
	return echo.NewHTTPError(http.StatusNotFound, "peserta tidak ditemukan")
}

func (s *server) submitBehavior(ctx echo.Context) error {
	var data participant.BehaviorAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BehaviorAssessment")
	}
	if data.ParticipantID == 0 || core.CleanString(data.Notes) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "catatan wajib diisi")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Catatan akhlak tersimpan."})
}

func (s *server) statistics(ctx echo.Context) error {
	track := participant.Track(ctx.Param("lokasi"))
	if !track.Valid() {
		return echo.NewHTTPError(http.StatusNotFound, "lokasi tidak dikenal")
	}
	return ctx.JSON(http.StatusOK, s.data.stats[track])
}
