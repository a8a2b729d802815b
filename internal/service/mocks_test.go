package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/calendar"
	"agenda/internal/domain"
	"agenda/pkg/timezone"
)

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Appointment

	createErr error
	updateErr error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{nextID: 1, items: make(map[int64]domain.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appointment domain.Appointment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	appointment.ID = r.nextID
	r.nextID++
	r.items[appointment.ID] = appointment
	return appointment.ID, nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) GetByExternalEventID(_ context.Context, doctorID int64, eventID string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appointment := range r.items {
		if appointment.DoctorID == doctorID &&
			appointment.ExternalEventID != nil && *appointment.ExternalEventID == eventID {
			copied := appointment
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appointment domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.items[appointment.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.filtered(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DateTimeUTC.Before(matched[j].DateTimeUTC)
	})
	if filter.Offset >= len(matched) {
		return []domain.Appointment{}, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], nil
}

func (r *fakeAppointmentRepo) CountByFilter(_ context.Context, filter domain.AppointmentFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filtered(filter)), nil
}

func (r *fakeAppointmentRepo) FindOverlapping(_ context.Context, doctorID int64, start, end time.Time, excludeID *int64) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	overlapping := make([]domain.Appointment, 0)
	for _, appointment := range r.items {
		if appointment.DoctorID != doctorID || appointment.Status == domain.AppointmentStatusCancelled {
			continue
		}
		if excludeID != nil && appointment.ID == *excludeID {
			continue
		}
		if domain.IntervalsOverlap(start, end, appointment.Start(), appointment.End()) {
			overlapping = append(overlapping, appointment)
		}
	}
	return overlapping, nil
}

func (r *fakeAppointmentRepo) filtered(filter domain.AppointmentFilter) []domain.Appointment {
	matched := make([]domain.Appointment, 0)
	for _, appointment := range r.items {
		if appointment.DoctorID != filter.DoctorID {
			continue
		}
		if filter.PatientID != nil {
			if appointment.PatientID == nil || *appointment.PatientID != *filter.PatientID {
				continue
			}
		}
		if filter.Status != nil && appointment.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && appointment.DateTimeUTC.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && !appointment.DateTimeUTC.Before(*filter.EndDate) {
			continue
		}
		matched = append(matched, appointment)
	}
	return matched
}

type fakeDoctorRepo struct {
	doctors  map[int64]domain.Doctor
	syncedAt map[int64]time.Time
}

func newFakeDoctorRepo(doctors ...domain.Doctor) *fakeDoctorRepo {
	repo := &fakeDoctorRepo{
		doctors:  make(map[int64]domain.Doctor),
		syncedAt: make(map[int64]time.Time),
	}
	for _, doctor := range doctors {
		repo.doctors[doctor.ID] = doctor
	}
	return repo
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, id int64) (*domain.Doctor, error) {
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := doctor
	return &copied, nil
}

func (r *fakeDoctorRepo) UpdateCalendarSyncedAt(_ context.Context, id int64, syncedAt time.Time) error {
	if _, ok := r.doctors[id]; !ok {
		return domain.ErrNotFound
	}
	r.syncedAt[id] = syncedAt
	return nil
}

type fakePatientRepo struct {
	patients map[int64]domain.Patient
}

func newFakePatientRepo(patients ...domain.Patient) *fakePatientRepo {
	repo := &fakePatientRepo{patients: make(map[int64]domain.Patient)}
	for _, patient := range patients {
		repo.patients[patient.ID] = patient
	}
	return repo
}

func (r *fakePatientRepo) GetByID(_ context.Context, id int64) (*domain.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := patient
	return &copied, nil
}

type fakeGateway struct {
	listItems []calendar.EventItem
	listErr   error

	busy    []domain.BusyInterval
	busyErr error

	created   []calendar.EventInput
	createErr error
	updated   map[string]calendar.EventInput
	deleted   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{updated: make(map[string]calendar.EventInput)}
}

func (g *fakeGateway) ListEvents(_ context.Context, _ domain.CalendarRef, _, _ time.Time) ([]calendar.EventItem, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.listItems, nil
}

func (g *fakeGateway) FreeBusy(_ context.Context, _ domain.CalendarRef, _, _ time.Time) ([]domain.BusyInterval, error) {
	if g.busyErr != nil {
		return nil, g.busyErr
	}
	return g.busy, nil
}

func (g *fakeGateway) CreateEvent(_ context.Context, ref domain.CalendarRef, input calendar.EventInput) (*domain.ExternalCalendarEvent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, input)
	return &domain.ExternalCalendarEvent{
		ID:         "mirror-" + input.UID,
		CalendarID: ref.CalendarID,
		Title:      input.Title,
		Start:      input.Start,
		End:        input.End,
		Status:     "confirmed",
	}, nil
}

func (g *fakeGateway) UpdateEvent(_ context.Context, _ domain.CalendarRef, eventID string, input calendar.EventInput) error {
	g.updated[eventID] = input
	return nil
}

func (g *fakeGateway) DeleteEvent(_ context.Context, _ domain.CalendarRef, eventID string) error {
	g.deleted = append(g.deleted, eventID)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) UploadReport(_ context.Context, data []byte, objectName string) (string, error) {
	s.objects[objectName] = data
	return "reports/" + objectName, nil
}

type fakeNotifier struct {
	booked    []int64
	cancelled []int64
}

func (n *fakeNotifier) AppointmentBooked(_ context.Context, appointmentID int64, _ string, _ time.Time) error {
	n.booked = append(n.booked, appointmentID)
	return nil
}

func (n *fakeNotifier) AppointmentCancelled(_ context.Context, appointmentID int64, _, _ string) error {
	n.cancelled = append(n.cancelled, appointmentID)
	return nil
}

func testConfig() config.AvailabilityConfig {
	return config.AvailabilityConfig{
		FailOpen:           true,
		RevalidateOnUpdate: true,
		SlotStepMinutes:    30,
		MaxDurationMinutes: 480,
	}
}

func testNormalizer() *timezone.Normalizer {
	normalizer, err := timezone.NewNormalizer(
		[]string{"America/Santiago", "America/Sao_Paulo", "America/Bogota", "UTC"},
		"America/Santiago",
	)
	if err != nil {
		panic(err)
	}
	return normalizer
}

func fullWeekHours(start, end string) domain.WorkingHours {
	hours := make(domain.WorkingHours, 7)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[day] = domain.WorkingDay{Start: start, End: end, Available: true}
	}
	hours["saturday"] = domain.WorkingDay{Available: false}
	hours["sunday"] = domain.WorkingDay{Available: false}
	return hours
}

func strPtr(s string) *string { return &s }

func testDoctor(id int64, withCalendar bool) domain.Doctor {
	doctor := domain.Doctor{
		ID:                      id,
		FirstName:               "Мария",
		LastName:                "Гонсалес",
		Email:                   "maria@clinic.cl",
		Timezone:                "America/Santiago",
		WorkingHours:            fullWeekHours("09:00", "17:00"),
		CancellationNoticeHours: 24,
		CancellationPenaltyPct:  50,
	}
	if withCalendar {
		doctor.CalendarID = strPtr("doc-" + doctor.Email)
		doctor.CalendarSubject = strPtr(doctor.Email)
	}
	return doctor
}

func testPatient(id int64) domain.Patient {
	return domain.Patient{
		ID:        id,
		FirstName: "Хуан",
		LastName:  "Перес",
		Email:     "juan@example.com",
	}
}

var testLogger = zap.NewNop()
