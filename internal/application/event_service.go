package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/plantogether/internal/availability"
	"github.com/example/plantogether/internal/event"
	"github.com/example/plantogether/internal/persistence"
)

// EventService orchestrates validation, authorization, and persistence for
// events, their membership, and availability declarations.
type EventService struct {
	events      persistence.EventRepository
	users       persistence.UserRepository
	idGenerator func() string
	now         func() time.Time
	cache       *bestTimeCache
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events persistence.EventRepository, users persistence.UserRepository, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, users, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events persistence.EventRepository, users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		cache:       newBestTimeCache(0, 0, now),
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create validates input and persists a new event with the caller as creator.
func (s *EventService) Create(ctx context.Context, params CreateEventParams) (view EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", view.ID).InfoContext(ctx, "event created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := validateEventInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	ev := event.New(
		s.idGenerator(),
		strings.TrimSpace(params.Input.Title),
		strings.TrimSpace(params.Input.Description),
		params.Principal.UserID,
		s.now(),
	)
	if err = s.events.CreateEvent(ctx, ev); err != nil {
		err = mapEventRepoError(err)
		return
	}

	return s.viewForEvent(ctx, ev)
}

// Get returns one event. Any authenticated user may read an event, which is
// what makes shareable join links work.
func (s *EventService) Get(ctx context.Context, principal Principal, eventID string) (view EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	return s.viewForEvent(ctx, ev)
}

// List returns every event the caller participates in.
func (s *EventService) List(ctx context.Context, principal Principal) (views []EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	events, err := s.events.ListEventsForUser(ctx, principal.UserID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	views = make([]EventView, 0, len(events))
	for _, ev := range events {
		view, vErr := s.viewForEvent(ctx, ev)
		if vErr != nil {
			err = vErr
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateDetails changes the title and description. Creator only. Empty input
// fields keep the stored value.
func (s *EventService) UpdateDetails(ctx context.Context, params UpdateEventParams) (view EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDetails",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	if !ev.IsCreator(params.Principal.UserID) {
		err = ErrUnauthorized
		return
	}

	title := strings.TrimSpace(params.Input.Title)
	description := strings.TrimSpace(params.Input.Description)
	if title == "" && description == "" {
		vErr := &ValidationError{}
		vErr.add("title", "Brak zmian do zapisania.")
		err = vErr
		return
	}

	ev.UpdateDetails(title, description, s.now())
	if err = s.events.UpdateEventDetails(ctx, ev.ID, ev.Title, ev.Description, ev.UpdatedAt); err != nil {
		err = mapEventRepoError(err)
		return
	}

	return s.viewForEvent(ctx, ev)
}

// Delete removes an event entirely. Creator only.
func (s *EventService) Delete(ctx context.Context, principal Principal, eventID string) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return mapEventRepoError(err)
	}
	if !ev.IsCreator(principal.UserID) {
		return ErrUnauthorized
	}

	if err = s.events.DeleteEvent(ctx, eventID); err != nil {
		return mapEventRepoError(err)
	}
	s.cache.Invalidate(eventID)
	return nil
}

// Join adds the caller as a participant.
func (s *EventService) Join(ctx context.Context, params MembershipParams) (view EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Join",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant joined")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if err = ev.Join(params.Principal.UserID, s.now()); err != nil {
		return
	}

	joined, _ := ev.Participant(params.Principal.UserID)
	if err = s.events.AddParticipant(ctx, ev.ID, joined); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = event.ErrAlreadyParticipant
			return
		}
		err = mapEventRepoError(err)
		return
	}

	s.cache.Invalidate(ev.ID)
	return s.viewForEvent(ctx, ev)
}

// Leave removes the caller from the participant list together with any
// declaration they submitted.
func (s *EventService) Leave(ctx context.Context, params MembershipParams) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "Leave",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to leave event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant left")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return mapEventRepoError(err)
	}

	if err = ev.Leave(params.Principal.UserID); err != nil {
		return err
	}

	if err = s.events.RemoveParticipant(ctx, ev.ID, params.Principal.UserID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return event.ErrNotParticipant
		}
		return mapEventRepoError(err)
	}

	s.cache.Invalidate(ev.ID)
	return nil
}

// Kick removes another participant. Creator only, and the creator cannot be
// the target.
func (s *EventService) Kick(ctx context.Context, params KickParams) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "Kick",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
		"target_id", params.TargetUserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to kick participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant kicked")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return mapEventRepoError(err)
	}

	if err = ev.Kick(params.Principal.UserID, params.TargetUserID); err != nil {
		return err
	}

	if err = s.events.RemoveParticipant(ctx, ev.ID, params.TargetUserID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return event.ErrTargetNotParticipant
		}
		return mapEventRepoError(err)
	}

	s.cache.Invalidate(ev.ID)
	return nil
}

// SubmitAvailability stores the caller's weekly declaration, replacing any
// previous one. A caller who is not a participant yet is joined first.
func (s *EventService) SubmitAvailability(ctx context.Context, params SubmitAvailabilityParams) (view EventView, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SubmitAvailability",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "availability submitted")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	joined, err := ev.SubmitAvailability(params.Principal.UserID, params.Weekly, s.now())
	if err != nil {
		if vErr := validationForWeekly(err); vErr != nil {
			err = vErr
		}
		return
	}

	if joined {
		logger.InfoContext(ctx, "participant joined implicitly")
		record, _ := ev.Participant(params.Principal.UserID)
		record.Availability = nil
		if err = s.events.AddParticipant(ctx, ev.ID, record); err != nil && !errors.Is(err, persistence.ErrDuplicate) {
			err = mapEventRepoError(err)
			return
		}
		err = nil
	}

	if err = s.events.SetAvailability(ctx, ev.ID, params.Principal.UserID, params.Weekly); err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.cache.Invalidate(ev.ID)
	return s.viewForEvent(ctx, ev)
}

// ClearAvailability removes the caller's declaration while keeping them a
// participant.
func (s *EventService) ClearAvailability(ctx context.Context, params MembershipParams) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "ClearAvailability",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clear availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "availability cleared")
	}()

	ev, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return mapEventRepoError(err)
	}

	if err = ev.ClearAvailability(params.Principal.UserID); err != nil {
		return err
	}

	if err = s.events.ClearAvailability(ctx, ev.ID, params.Principal.UserID); err != nil {
		return mapEventRepoError(err)
	}

	s.cache.Invalidate(ev.ID)
	return nil
}

// BestTime computes the proposed meeting slot for an event. Results are
// cached briefly and dropped on any write to the event.
func (s *EventService) BestTime(ctx context.Context, principal Principal, eventID string) (result availability.BestTime, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	if cached, ok := s.cache.Get(eventID); ok {
		return cached, nil
	}

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	result = ev.BestTime()
	s.cache.Store(eventID, result)
	return result, nil
}

func (s *EventService) viewForEvent(ctx context.Context, ev *event.Event) (EventView, error) {
	view := EventView{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		CreatorID:   ev.CreatorID,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}

	accounts := make(map[string]persistence.User)
	if s.users != nil && len(ev.Participants) > 0 {
		ids := make([]string, 0, len(ev.Participants))
		for _, p := range ev.Participants {
			ids = append(ids, p.UserID)
		}
		users, err := s.users.ListUsersByIDs(ctx, ids)
		if err != nil {
			return EventView{}, err
		}
		for _, u := range users {
			accounts[u.ID] = u
		}
	}

	view.Participants = make([]ParticipantView, 0, len(ev.Participants))
	for _, p := range ev.Participants {
		pv := ParticipantView{
			UserID:       p.UserID,
			Declared:     p.Declared(),
			Availability: p.Availability,
			JoinedAt:     p.JoinedAt,
		}
		if account, ok := accounts[p.UserID]; ok {
			pv.Name = account.Name
			pv.Surname = account.Surname
			pv.Email = account.Email
		}
		view.Participants = append(view.Participants, pv)
	}
	return view, nil
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "Tytuł jest wymagany.")
	}
	return vErr
}

// validationForWeekly converts a declaration range error into a field error.
func validationForWeekly(err error) *ValidationError {
	if !errors.Is(err, availability.ErrInvalidTimeRange) {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("availability", "Nieprawidłowy przedział czasu.")
	return vErr
}

func mapEventRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}
