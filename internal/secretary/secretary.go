// Package secretary is the rule-based booking assistant. It fills the
// appointment slots (service, specialist, name, phone, date, time) from
// free-text Russian messages, one prompt at a time, and books the visit once
// everything is known.
package secretary

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/dialoglog"
	"github.com/wolfman30/clinic-secretary/internal/validation"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// MaxMessageLength is the longest accepted chat message, in runes.
const MaxMessageLength = 500

// Intents reported with every reply.
const (
	IntentCollectService    = "collect_service"
	IntentCollectSpecialist = "collect_specialist"
	IntentCollectName       = "collect_name"
	IntentCollectPhone      = "collect_phone"
	IntentCollectDate       = "collect_date"
	IntentCollectTime       = "collect_time"
	IntentBookingCompleted  = "booking_completed"
	IntentBookingError      = "booking_error"
	IntentMemoryRecovery    = "memory_recovery"
	IntentError             = "error"
)

const chatChannel = "chat"

// Booker creates appointments; *booking.Service implements it.
type Booker interface {
	Book(ctx context.Context, req booking.Request) (*booking.Outcome, error)
}

// DialogRecorder stores each exchange; *dialoglog.Store implements it.
type DialogRecorder interface {
	Record(ctx context.Context, e dialoglog.Entry) error
}

// Observer receives one call per processed message.
type Observer interface {
	ObserveIntent(intent string)
}

// Response is the secretary's answer to one message.
type Response struct {
	Reply         string   `json:"reply"`
	Intent        string   `json:"intent"`
	NextField     string   `json:"next_field,omitempty"`
	Progress      int      `json:"progress"`
	Entities      Entities `json:"entities"`
	SessionID     string   `json:"session_id"`
	Slots         []string `json:"slots,omitempty"`
	AppointmentID string   `json:"appointment_id,omitempty"`
}

// SessionSummary describes a stored session.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	Entities      Entities  `json:"entities"`
	State         State     `json:"state"`
	Progress      float64   `json:"progress"`
	HistoryLength int       `json:"history_length"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdate    time.Time `json:"last_update"`
}

// Options configures a Secretary.
type Options struct {
	DialogLog DialogRecorder
	Observer  Observer
	Logger    *logging.Logger
	Now       func() time.Time
	NewID     func() string
}

// Secretary runs the slot-filling dialogue.
type Secretary struct {
	validator *validation.Validator
	catalog   *catalog.Catalog
	booker    Booker
	sessions  SessionStore
	extractor *Extractor
	dialogLog DialogRecorder
	observer  Observer
	logger    *logging.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
	stats     counters
}

// New wires a secretary. The validator supplies the catalog, free slots and
// the clinic calendar.
func New(validator *validation.Validator, booker Booker, sessions SessionStore, opts Options) *Secretary {
	if validator == nil {
		panic("secretary: validator required")
	}
	if booker == nil {
		panic("secretary: booker required")
	}
	if sessions == nil {
		sessions = NewMemorySessionStore(DefaultSessionTTL)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "chat_" + uuid.NewString() }
	}
	return &Secretary{
		validator: validator,
		catalog:   validator.Catalog(),
		booker:    booker,
		sessions:  sessions,
		extractor: NewExtractor(validator.Catalog(), opts.Now),
		dialogLog: opts.DialogLog,
		observer:  opts.Observer,
		logger:    opts.Logger,
		tracer:    otel.Tracer("clinic-secretary.internal.secretary"),
		now:       opts.Now,
		newID:     opts.NewID,
	}
}

// ValidateMessage checks a raw chat message before processing.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrMessageRequired
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return fmt.Errorf("%w: limit is %d characters", ErrMessageTooLong, MaxMessageLength)
	}
	return nil
}

// Process handles one user message. An empty sessionID starts a new session.
// Failures are logged and answered with an apology, so a reply is always
// returned.
func (s *Secretary) Process(ctx context.Context, sessionID, message string) *Response {
	ctx, span := s.tracer.Start(ctx, "secretary.process")
	defer span.End()

	s.stats.totalRequests.Add(1)
	if sessionID == "" {
		sessionID = s.newID()
	}
	span.SetAttributes(attribute.String("session_id", sessionID))

	sess, err := s.sessions.Load(ctx, sessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		sess = NewSession(sessionID, s.now())
	case err != nil:
		span.RecordError(err)
		s.logger.Error("failed to load chat session", "error", err, "session_id", sessionID)
		return s.finish(ctx, &Response{Reply: replyApology, Intent: IntentError, SessionID: sessionID}, nil, message, nil)
	}

	sess.AddTurn("user", message, s.now())

	var (
		resp      *Response
		extracted []string
	)
	if isMemoryComplaint(message) {
		s.stats.memoryRecoveries.Add(1)
		resp = &Response{Reply: memoryReply(sess.Entities), Intent: IntentMemoryRecovery}
	} else {
		resp, extracted, err = s.converse(ctx, sess, message)
		if err != nil {
			span.RecordError(err)
			s.logger.Error("failed to process chat message", "error", err, "session_id", sessionID)
			resp = &Response{Reply: replyApology, Intent: IntentError}
		}
	}

	resp.SessionID = sess.ID
	resp.Entities = sess.Entities
	resp.NextField = sess.NextField()
	resp.Progress = int(math.Round(sess.Progress() * 100))
	sess.AddTurn("assistant", resp.Reply, s.now())

	if err := s.sessions.Save(ctx, sess); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to save chat session", "error", err, "session_id", sessionID)
	}
	span.SetAttributes(attribute.String("intent", resp.Intent))
	return s.finish(ctx, resp, sess, message, extracted)
}

func (s *Secretary) finish(ctx context.Context, resp *Response, sess *Session, message string, extracted []string) *Response {
	if s.observer != nil {
		s.observer.ObserveIntent(resp.Intent)
	}
	if s.dialogLog == nil {
		return resp
	}
	entry := dialoglog.Entry{
		SessionID:       resp.SessionID,
		UserMessage:     message,
		Reply:           resp.Reply,
		Intent:          resp.Intent,
		ExtractedFields: extracted,
		Channel:         chatChannel,
	}
	if sess != nil {
		entry.Service = sess.Entities.Service
		entry.Specialist = sess.Entities.Specialist
		entry.Entities = sess.Entities.Map()
	}
	if err := s.dialogLog.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record dialog", "error", err, "session_id", resp.SessionID)
	}
	return resp
}

func (s *Secretary) converse(ctx context.Context, sess *Session, message string) (*Response, []string, error) {
	ent := &sess.Entities
	if sess.State == StateCompleted {
		// A finished booking keeps who the patient is and starts over.
		*ent = Entities{Name: ent.Name, Phone: ent.Phone}
		sess.AppointmentID = ""
	}

	found := s.extractor.ExtractAt(message, *ent, s.clinicNow(ctx))
	extracted := ent.Merge(found)

	if found.Specialist != "" {
		if _, _, err := s.catalog.FindSpecialist(found.Specialist); err != nil {
			ent.Specialist = ""
			sess.State = StateCollectingService
			return &Response{Reply: unknownSpecialist(found.Specialist, s.catalog.SpecialistsFor(ent.Service)), Intent: IntentCollectSpecialist}, extracted, nil
		}
	}
	if found.Service != "" && ent.Specialist == "" {
		if sps := s.catalog.SpecialistsFor(ent.Service); len(sps) == 1 {
			ent.Specialist = sps[0].Name
		}
	}

	next := sess.NextField()
	sess.State = stateFor(next)
	lower := strings.ToLower(message)

	switch next {
	case "":
		resp, err := s.book(ctx, sess)
		return resp, extracted, err
	case validation.FieldService:
		return s.askService(lower, ent), extracted, nil
	case validation.FieldSpecialist:
		sps := s.catalog.SpecialistsFor(ent.Service)
		if len(sps) == 1 {
			ent.Specialist = sps[0].Name
			sess.State = StateCollectingName
			return &Response{Reply: greetSpecialist(sps[0].DativeName()), Intent: IntentCollectName}, extracted, nil
		}
		return &Response{Reply: askSpecialist(sps), Intent: IntentCollectSpecialist}, extracted, nil
	case validation.FieldName:
		reply := replyAskName
		if found.Service != "" || found.Specialist != "" {
			reply = greetSpecialist(s.dative(ent.Specialist))
		}
		return &Response{Reply: reply, Intent: IntentCollectName}, extracted, nil
	case validation.FieldPhone:
		return &Response{Reply: askPhone(ent.Name), Intent: IntentCollectPhone}, extracted, nil
	case validation.FieldDate:
		return s.askDate(ctx, ent), extracted, nil
	default:
		resp, err := s.askTime(ctx, sess)
		return resp, extracted, err
	}
}

// clinicNow is the current time in the clinic timezone. Falls back to the
// secretary clock when the clinic settings cannot be read.
func (s *Secretary) clinicNow(ctx context.Context) time.Time {
	now, err := s.validator.Now(ctx)
	if err != nil {
		s.logger.Warn("failed to resolve clinic time", "error", err)
		return s.now()
	}
	return now
}

func (s *Secretary) askService(lower string, ent *Entities) *Response {
	if containsAny(lower, menuRequests) {
		return &Response{Reply: menuReply(s.catalog.Services()), Intent: IntentCollectService}
	}
	if ent.Specialist != "" {
		if sp, _, err := s.catalog.FindSpecialist(ent.Specialist); err == nil {
			return &Response{Reply: specialistServicesReply(sp, s.catalog.Services()), Intent: IntentCollectService}
		}
	}
	for _, g := range genericServices {
		if strings.Contains(lower, g.stem) {
			return &Response{Reply: g.reply, Intent: IntentCollectSpecialist}
		}
	}
	return &Response{Reply: replyAskService, Intent: IntentCollectService}
}

func (s *Secretary) dative(name string) string {
	if sp, _, err := s.catalog.FindSpecialist(name); err == nil {
		return sp.DativeName()
	}
	return name
}

// resolved returns the catalog entries behind the collected names.
func (s *Secretary) resolved(ent *Entities) (catalog.Specialist, catalog.Service, bool) {
	sp, _, err := s.catalog.FindSpecialist(ent.Specialist)
	if err != nil {
		return catalog.Specialist{}, catalog.Service{}, false
	}
	svc, _, err := s.catalog.FindService(ent.Service)
	if err != nil {
		return catalog.Specialist{}, catalog.Service{}, false
	}
	return sp, svc, true
}

func (s *Secretary) suggestDays(ctx context.Context, ent *Entities) []time.Time {
	sp, svc, ok := s.resolved(ent)
	if !ok {
		return nil
	}
	s.stats.calendarQueries.Add(1)
	days, err := s.validator.SuggestDates(ctx, sp.ID, s.clinicNow(ctx), svc.Duration(), suggestedDayCount)
	if err != nil {
		s.logger.Warn("failed to suggest dates", "error", err, "specialist", sp.ID)
		return nil
	}
	return days
}

func (s *Secretary) askDate(ctx context.Context, ent *Entities) *Response {
	return &Response{Reply: withDateSuggestions(replyAskDate, s.suggestDays(ctx, ent)), Intent: IntentCollectDate}
}

// askTime runs once a date is known: it rejects unusable days and otherwise
// lists the free start times for that day.
func (s *Secretary) askTime(ctx context.Context, sess *Session) (*Response, error) {
	ent := &sess.Entities
	day, err := s.validator.ResolveDate(ctx, ent.Date)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidDate) || errors.Is(err, validation.ErrDateEmpty) {
			ent.Date = ""
			sess.State = StateCollectingDate
			return &Response{Reply: err.Error() + "\n\n" + replyAskDate, Intent: IntentCollectDate}, nil
		}
		return nil, err
	}

	violation, err := s.validator.CheckDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if violation != nil {
		ent.Date = ""
		sess.State = StateCollectingDate
		return &Response{Reply: withDateSuggestions(violation.Message+"\n\n"+replyPickAnother, s.suggestDays(ctx, ent)), Intent: IntentCollectDate}, nil
	}

	sp, svc, ok := s.resolved(ent)
	finder := s.validator.Slots()
	if !ok || finder == nil {
		return &Response{Reply: replyAskTime, Intent: IntentCollectTime}, nil
	}
	s.stats.calendarQueries.Add(1)
	slots, err := finder.FreeSlots(ctx, sp.ID, day, svc.Duration())
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		ent.Date = ""
		sess.State = StateCollectingDate
		return &Response{Reply: withDateSuggestions(noSlotsReply(day, sp.Name), s.suggestDays(ctx, ent)), Intent: IntentCollectDate}, nil
	}
	times := validation.SlotTimes(slots, maxListedSlots)
	return &Response{Reply: freeSlotsReply(day, sp.Name, times), Intent: IntentCollectTime, Slots: times}, nil
}

func (s *Secretary) book(ctx context.Context, sess *Session) (*Response, error) {
	ent := &sess.Entities
	outcome, err := s.booker.Book(ctx, booking.Request{
		Name:       ent.Name,
		Phone:      ent.Phone,
		Service:    ent.Service,
		Specialist: ent.Specialist,
		Date:       ent.Date,
		Time:       ent.Time,
		Channel:    booking.ChannelChat,
		SessionID:  sess.ID,
	})
	if err != nil {
		return nil, err
	}

	if appt := outcome.Appointment; appt != nil {
		s.stats.successfulBookings.Add(1)
		sess.AppointmentID = appt.ID
		sess.State = StateCompleted
		s.logger.Info("chat booking completed", "session_id", sess.ID, "appointment_id", appt.ID)
		return &Response{Reply: confirmationReply(appt), Intent: IntentBookingCompleted, AppointmentID: appt.ID}, nil
	}

	s.stats.validationErrors.Add(1)
	res := outcome.Result
	dayLabel := ent.Date
	if day, err := s.validator.ResolveDate(ctx, ent.Date); err == nil {
		dayLabel = day.Format("02.01.2006")
	}

	switch v := res.Violation; {
	case v != nil && v.TimeProblem() && len(res.Suggestions) > 0:
		ent.Time = ""
		sess.State = StateCollectingTime
		return &Response{Reply: conflictReply(v.Message, dayLabel, res.Suggestions), Intent: IntentCollectTime, Slots: res.Suggestions}, nil
	case v != nil && v.TimeProblem():
		ent.Date, ent.Time = "", ""
		sess.State = StateCollectingDate
		reply := fmt.Sprintf("⚠️ %s\n\nНа %s свободного времени нет. %s", v.Message, dayLabel, replyPickAnother)
		return &Response{Reply: withDateSuggestions(reply, s.suggestDays(ctx, ent)), Intent: IntentCollectDate}, nil
	case v != nil && v.DateProblem():
		ent.Date, ent.Time = "", ""
		sess.State = StateCollectingDate
		return &Response{Reply: withDateSuggestions(v.Message+"\n\n"+replyPickAnother, s.suggestDays(ctx, ent)), Intent: IntentCollectDate}, nil
	}

	for _, f := range res.Fields {
		ent.Set(f, "")
	}
	sess.State = stateFor(sess.NextField())
	return &Response{Reply: "Извините, произошла ошибка при создании записи: " + validation.Summary(res), Intent: IntentBookingError}, nil
}

// Summary describes a stored session.
func (s *Secretary) Summary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSummary{
		SessionID:     sess.ID,
		Entities:      sess.Entities,
		State:         sess.State,
		Progress:      sess.Progress(),
		HistoryLength: len(sess.History),
		AppointmentID: sess.AppointmentID,
		CreatedAt:     sess.CreatedAt,
		LastUpdate:    sess.UpdatedAt,
	}, nil
}

// History returns the stored turns of a session.
func (s *Secretary) History(ctx context.Context, sessionID string) ([]Turn, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// Reset forgets a session.
func (s *Secretary) Reset(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Stats returns the counters and the number of live sessions.
func (s *Secretary) Stats(ctx context.Context) (Stats, error) {
	out := s.stats.snapshot()
	n, err := s.sessions.Count(ctx)
	if err != nil {
		return out, err
	}
	out.ActiveSessions = n
	return out, nil
}
