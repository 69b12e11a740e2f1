package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-secretary/internal/validation"
)

// Repository persists patients and appointments.
type Repository interface {
	validation.BusyLister
	EnsurePatient(ctx context.Context, p Patient) (*Patient, error)
	CreateAppointment(ctx context.Context, appt *Appointment) error
	ListByPhone(ctx context.Context, phone string) ([]*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)
}

// InMemoryRepository keeps everything in process memory.
type InMemoryRepository struct {
	mu           sync.RWMutex
	patients     map[string]*Patient // by phone
	appointments map[string]*Appointment
	now          func() time.Time
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		patients:     make(map[string]*Patient),
		appointments: make(map[string]*Appointment),
		now:          time.Now,
	}
}

// EnsurePatient returns the patient with p.Phone, creating it when missing.
func (r *InMemoryRepository) EnsurePatient(ctx context.Context, p Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.patients[p.Phone]; ok {
		if existing.Email == "" && p.Email != "" {
			existing.Email = p.Email
		}
		cp := *existing
		return &cp, nil
	}
	p.ID = uuid.NewString()
	p.CreatedAt = r.now()
	r.patients[p.Phone] = &p
	cp := p
	return &cp, nil
}

// CreateAppointment stores appt unless an active booking for the same
// specialist overlaps it.
func (r *InMemoryRepository) CreateAppointment(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.SpecialistID == appt.SpecialistID && existing.Status.Active() &&
			appt.Start.Before(existing.End) && appt.End.After(existing.Start) {
			return ErrSlotTaken
		}
	}
	appt.ID = uuid.NewString()
	appt.CreatedAt = r.now()
	if appt.Status == "" {
		appt.Status = StatusPending
	}
	for _, p := range r.patients {
		if p.ID == appt.PatientID {
			appt.PatientName, appt.PatientPhone, appt.PatientEmail = p.Name, p.Phone, p.Email
		}
	}
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

// ListBusy returns active intervals overlapping the query window.
func (r *InMemoryRepository) ListBusy(ctx context.Context, q validation.BusyQuery) ([]validation.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []validation.Interval
	for _, a := range r.appointments {
		if !a.Status.Active() {
			continue
		}
		if q.SpecialistID != "" && a.SpecialistID != q.SpecialistID {
			continue
		}
		if q.PatientPhone != "" && a.PatientPhone != q.PatientPhone {
			continue
		}
		iv := validation.Interval{Start: a.Start, End: a.End}
		if iv.Overlaps(q.From, q.To) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// ListByPhone returns the patient's active appointments ordered by start.
func (r *InMemoryRepository) ListByPhone(ctx context.Context, phone string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Appointment
	for _, a := range r.appointments {
		if a.PatientPhone == phone && a.Status.Active() {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Get returns an appointment by id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

// UpdateStatus sets the status and returns the updated appointment.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}
