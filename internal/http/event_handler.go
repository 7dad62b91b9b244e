package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/plantogether/internal/application"
	"github.com/example/plantogether/internal/availability"
)

type eventService interface {
	Create(ctx context.Context, params application.CreateEventParams) (application.EventView, error)
	Get(ctx context.Context, principal application.Principal, eventID string) (application.EventView, error)
	List(ctx context.Context, principal application.Principal) ([]application.EventView, error)
	UpdateDetails(ctx context.Context, params application.UpdateEventParams) (application.EventView, error)
	Delete(ctx context.Context, principal application.Principal, eventID string) error
	Join(ctx context.Context, params application.MembershipParams) (application.EventView, error)
	Leave(ctx context.Context, params application.MembershipParams) error
	Kick(ctx context.Context, params application.KickParams) error
	SubmitAvailability(ctx context.Context, params application.SubmitAvailabilityParams) (application.EventView, error)
	ClearAvailability(ctx context.Context, params application.MembershipParams) error
	BestTime(ctx context.Context, principal application.Principal, eventID string) (availability.BestTime, error)
}

type EventHandler struct {
	service       eventService
	responder     responder
	logger        *slog.Logger
	publicBaseURL string
}

// NewEventHandler constructs the handler. publicBaseURL is used to build the
// shareable join link included in event responses.
func NewEventHandler(service eventService, publicBaseURL string, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{
		service:       service,
		responder:     newResponder(base),
		logger:        base,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *EventHandler) eventID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id in request path")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return "", false
	}
	return id, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	view, err := h.service.Create(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     application.EventInput{Title: req.Title, Description: req.Description},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", view.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: h.toEventDTO(view)})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	views, err := h.service.List(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "event listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	events := make([]eventDTO, 0, len(views))
	for _, view := range views {
		events = append(events, h.toEventDTO(view))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: events})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Get")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "event_id", eventID)

	view, err := h.service.Get(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: h.toEventDTO(view)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Update")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID)

	view, err := h.service.UpdateDetails(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Input:     application.EventInput{Title: req.Title, Description: req.Description},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: h.toEventDTO(view)})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Delete")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.Delete(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Join")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Join", "principal_id", principal.UserID, "event_id", eventID)

	view, err := h.service.Join(r.Context(), application.MembershipParams{Principal: principal, EventID: eventID})
	if err != nil {
		logger.ErrorContext(r.Context(), "join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant joined")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: h.toEventDTO(view)})
}

func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Leave")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Leave", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.Leave(r.Context(), application.MembershipParams{Principal: principal, EventID: eventID}); err != nil {
		logger.ErrorContext(r.Context(), "leave failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant left")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Kick(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "Kick")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req kickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Kick", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode kick request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("Wskaż uczestnika do usunięcia."))
		return
	}

	logger := h.log(r.Context(), "Kick", "principal_id", principal.UserID, "event_id", eventID, "target_id", req.UserID)

	if err := h.service.Kick(r.Context(), application.KickParams{
		Principal:    principal,
		EventID:      eventID,
		TargetUserID: req.UserID,
	}); err != nil {
		logger.ErrorContext(r.Context(), "kick failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant kicked")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) SubmitAvailability(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "SubmitAvailability")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SubmitAvailability", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode availability request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	weekly, err := req.Availability.toWeekly()
	if err != nil {
		h.log(r.Context(), "SubmitAvailability", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "malformed availability payload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "SubmitAvailability", "principal_id", principal.UserID, "event_id", eventID)

	view, err := h.service.SubmitAvailability(r.Context(), application.SubmitAvailabilityParams{
		Principal: principal,
		EventID:   eventID,
		Weekly:    weekly,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "availability submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "availability submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: h.toEventDTO(view)})
}

func (h *EventHandler) ClearAvailability(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "ClearAvailability")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ClearAvailability", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.ClearAvailability(r.Context(), application.MembershipParams{Principal: principal, EventID: eventID}); err != nil {
		logger.ErrorContext(r.Context(), "availability clear failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "availability cleared")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) BestTime(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, ok := h.eventID(w, r, "BestTime")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "BestTime", "principal_id", principal.UserID, "event_id", eventID)

	result, err := h.service.BestTime(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "best time computation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBestTimeDTO(result))
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type kickRequest struct {
	UserID string `json:"user_id"`
}

type availabilityRequest struct {
	Availability weeklyDTO `json:"availability"`
}

// weeklyDTO maps lowercase day names to that day's declaration. Days absent
// from the map stay undeclared.
type weeklyDTO map[string]dayAvailabilityDTO

type dayAvailabilityDTO struct {
	AllFree bool   `json:"all_free,omitempty"`
	AllBusy bool   `json:"all_busy,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func (w weeklyDTO) toWeekly() (availability.Weekly, error) {
	var weekly availability.Weekly
	for name, decl := range w {
		day, err := availability.ParseDay(name)
		if err != nil {
			return availability.Weekly{}, fmt.Errorf("Nieznany dzień tygodnia: %s.", name)
		}

		switch {
		case decl.AllFree && decl.AllBusy:
			return availability.Weekly{}, fmt.Errorf("Dzień %s nie może być jednocześnie wolny i zajęty.", name)
		case decl.AllFree:
			weekly.Set(day, availability.FreeAllDay())
		case decl.AllBusy:
			weekly.Set(day, availability.BusyAllDay())
		case decl.From != "" || decl.To != "":
			if decl.From == "" || decl.To == "" {
				return availability.Weekly{}, fmt.Errorf("Dzień %s wymaga godzin od i do.", name)
			}
			from, err := availability.ParseTimeOfDay(decl.From)
			if err != nil {
				return availability.Weekly{}, fmt.Errorf("Nieprawidłowa godzina: %s.", decl.From)
			}
			to, err := availability.ParseTimeOfDay(decl.To)
			if err != nil {
				return availability.Weekly{}, fmt.Errorf("Nieprawidłowa godzina: %s.", decl.To)
			}
			rng, err := availability.NewRange(from, to)
			if err != nil {
				return availability.Weekly{}, fmt.Errorf("Nieprawidłowy przedział czasu dla dnia %s.", name)
			}
			weekly.Set(day, rng)
		}
	}
	return weekly, nil
}

func toWeeklyDTO(weekly *availability.Weekly) weeklyDTO {
	if weekly == nil {
		return nil
	}
	out := make(weeklyDTO)
	for day := availability.Monday; day <= availability.Sunday; day++ {
		decl := weekly.Get(day)
		switch decl.Kind {
		case availability.KindAllFree:
			out[day.String()] = dayAvailabilityDTO{AllFree: true}
		case availability.KindAllBusy:
			out[day.String()] = dayAvailabilityDTO{AllBusy: true}
		case availability.KindRange:
			out[day.String()] = dayAvailabilityDTO{From: decl.From.String(), To: decl.To.String()}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type participantDTO struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	Declared     bool      `json:"declared"`
	Availability weeklyDTO `json:"availability,omitempty"`
	JoinedAt     string    `json:"joined_at"`
}

type eventDTO struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	CreatorID    string           `json:"creator_id"`
	JoinLink     string           `json:"join_link"`
	Participants []participantDTO `json:"participants"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type eventListResponse struct {
	Events []eventDTO `json:"events"`
}

func (h *EventHandler) toEventDTO(view application.EventView) eventDTO {
	dto := eventDTO{
		ID:          view.ID,
		Title:       view.Title,
		Description: view.Description,
		CreatorID:   view.CreatorID,
		CreatedAt:   view.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   view.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	// Shareable link format is <base>/<eventID>; the frontend resolves it
	// and calls the join endpoint with the extracted ID.
	if h.publicBaseURL != "" {
		dto.JoinLink = h.publicBaseURL + "/" + view.ID
	}
	dto.Participants = make([]participantDTO, 0, len(view.Participants))
	for _, p := range view.Participants {
		dto.Participants = append(dto.Participants, participantDTO{
			UserID:       p.UserID,
			Name:         p.Name,
			Surname:      p.Surname,
			Email:        p.Email,
			Declared:     p.Declared,
			Availability: toWeeklyDTO(p.Availability),
			JoinedAt:     p.JoinedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return dto
}

type commonTimeDTO struct {
	FullDay bool   `json:"full_day,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

type dayResultDTO struct {
	Day            string         `json:"day"`
	Score          float64        `json:"score"`
	AvailableCount int            `json:"available_count"`
	TotalDeclared  int            `json:"total_declared"`
	CommonTime     *commonTimeDTO `json:"common_time,omitempty"`
}

type bestTimeResponse struct {
	Outcome        string         `json:"outcome"`
	Day            string         `json:"day,omitempty"`
	CommonTime     *commonTimeDTO `json:"common_time,omitempty"`
	AvailableCount int            `json:"available_count"`
	TotalDeclared  int            `json:"total_declared"`
	Days           []dayResultDTO `json:"days,omitempty"`
}

func toCommonTimeDTO(common availability.CommonTime) *commonTimeDTO {
	switch common.Kind {
	case availability.CommonTimeFullDay:
		return &commonTimeDTO{FullDay: true}
	case availability.CommonTimeWindow:
		return &commonTimeDTO{From: common.From.String(), To: common.To.String()}
	default:
		return nil
	}
}

func toBestTimeDTO(result availability.BestTime) bestTimeResponse {
	resp := bestTimeResponse{
		AvailableCount: result.AvailableCount,
		TotalDeclared:  result.TotalDeclared,
	}
	switch result.Outcome {
	case availability.BestTimeFound:
		resp.Outcome = "found"
		resp.Day = result.Day.String()
		resp.CommonTime = toCommonTimeDTO(result.Common)
	case availability.BestTimeNoCommonSlot:
		resp.Outcome = "no_common_slot"
	default:
		resp.Outcome = "none_declared"
	}
	for _, day := range result.Days {
		resp.Days = append(resp.Days, dayResultDTO{
			Day:            day.Day.String(),
			Score:          day.Score,
			AvailableCount: day.AvailableCount,
			TotalDeclared:  day.TotalDeclared,
			CommonTime:     toCommonTimeDTO(day.Common),
		})
	}
	return resp
}
