package core

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	PostEvents(gctx *gin.Context)
	GetEvents(gctx *gin.Context)
	GetEvent(gctx *gin.Context)
	PutEvent(gctx *gin.Context)
	DeleteEvent(gctx *gin.Context)
	ArchiveEvent(gctx *gin.Context)
	UnarchiveEvent(gctx *gin.Context)
	JoinEvent(gctx *gin.Context)
	LeaveEvent(gctx *gin.Context)
	GetUserEvents(gctx *gin.Context)

	Register(gctx *gin.Context)
	Login(gctx *gin.Context)
	GetProfile(gctx *gin.Context)
	PutProfile(gctx *gin.Context)
	GetInviteCode(gctx *gin.Context)
	ValidateInvite(gctx *gin.Context)

	Follow(gctx *gin.Context)
	Unfollow(gctx *gin.Context)
	GetFollows(gctx *gin.Context)
	GetFollowers(gctx *gin.Context)
	GetChatMessages(gctx *gin.Context)
	PostChatMessage(gctx *gin.Context)

	Upload(gctx *gin.Context)
}

type handlers struct {
	repository Repository
	adminUser  string
	uploadDir  string
}

func NewHandlers(repository Repository, adminUser, uploadDir string) Handlers {
	return &handlers{
		repository: repository,
		adminUser:  adminUser,
		uploadDir:  uploadDir,
	}
}

// eventId parses the :id path parameter, replying 400 on garbage. The second
// return value reports whether the handler should keep going.
func (h *handlers) eventId(gctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(gctx.Param("id"), 10, 64)
	if err != nil {
		log.Ctx(gctx.Request.Context()).Error().Err(err).Msg("parameter 'id' must be a number")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'id' must be a number", err))

		return 0, false
	}

	return id, true
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request EventRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	event := request.Event()

	err = ValidateEvent(&event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("event validation failed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("event validation failed", err))

		return
	}

	savedEvent, err := h.repository.SaveEvent(ctx, &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("saving event failed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("saving event failed", err))

		return
	}

	gctx.JSON(http.StatusCreated, savedEvent)
}

func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	includeArchived := gctx.Query("include_archived") == "true"

	events, err := h.repository.ListEvents(ctx, includeArchived)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing events failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("listing events failed", err))

		return
	}

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) GetEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	event, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting event failed", err))

		return
	}

	// Private events are not acknowledged to outsiders.
	if !VisibleTo(event, gctx.Query("username"), h.adminUser) {
		log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not visible to requester")
		gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", ErrEventNotFound))

		return
	}

	gctx.JSON(http.StatusOK, event)
}

func (h *handlers) PutEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	var request EventRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	existing, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting event failed", err))

		return
	}

	// The created_by field of the payload names the acting user.
	if !CanMutate(existing, request.CreatedBy, h.adminUser) {
		log.Ctx(ctx).Info().Int64("event_id", id).Str("username", request.CreatedBy).Msg("not allowed to edit event")
		gctx.AbortWithStatusJSON(http.StatusForbidden, NewError("not allowed to edit event", ErrForbidden))

		return
	}

	event := request.Event()
	event.Id = id
	event.CreatedBy = existing.CreatedBy
	event.IsArchived = existing.IsArchived

	err = ValidateEvent(&event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("event validation failed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("event validation failed", err))

		return
	}

	err = h.repository.UpdateEvent(ctx, &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("updating event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("updating event failed", err))

		return
	}

	updated, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting event failed", err))

		return
	}

	gctx.JSON(http.StatusOK, updated)
}

func (h *handlers) DeleteEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	username := gctx.Query("username")

	event, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting event failed", err))

		return
	}

	if !CanMutate(event, username, h.adminUser) {
		log.Ctx(ctx).Info().Int64("event_id", id).Str("username", username).Msg("not allowed to delete event")
		gctx.AbortWithStatusJSON(http.StatusForbidden, NewError("not allowed to delete event", ErrForbidden))

		return
	}

	err = h.repository.DeleteEvent(ctx, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("deleting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("deleting event failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

func (h *handlers) ArchiveEvent(gctx *gin.Context) {
	h.setArchived(gctx, true, "Event archived")
}

func (h *handlers) UnarchiveEvent(gctx *gin.Context) {
	h.setArchived(gctx, false, "Event unarchived")
}

func (h *handlers) setArchived(gctx *gin.Context, archived bool, message string) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	username := gctx.Query("username")

	event, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting event failed", err))

		return
	}

	if !CanMutate(event, username, h.adminUser) {
		log.Ctx(ctx).Info().Int64("event_id", id).Str("username", username).Msg("not allowed to archive event")
		gctx.AbortWithStatusJSON(http.StatusForbidden, NewError("not allowed to archive event", ErrForbidden))

		return
	}

	err = h.repository.SetEventArchived(ctx, id, archived)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("archiving event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("archiving event failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *handlers) JoinEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	var request JoinRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil || request.Username == "" {
		log.Ctx(ctx).Error().Err(err).Msg("username is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("username is required", err))

		return
	}

	err = h.repository.JoinEvent(ctx, id, request.Username)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("event not found", err))

			return
		}

		if errors.Is(err, ErrEventFull) {
			log.Ctx(ctx).Info().Int64("event_id", id).Msg("event is at capacity")
			gctx.AbortWithStatusJSON(http.StatusConflict, NewError("event is at capacity", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("joining event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("joining event failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Joined event"})
}

func (h *handlers) LeaveEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	var request JoinRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil || request.Username == "" {
		log.Ctx(ctx).Error().Err(err).Msg("username is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("username is required", err))

		return
	}

	err = h.repository.LeaveEvent(ctx, id, request.Username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("leaving event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("leaving event failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Left event"})
}

func (h *handlers) GetUserEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	events, err := h.repository.ListUserEvents(ctx, username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing user events failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("listing user events failed", err))

		return
	}

	gctx.JSON(http.StatusOK, events)
}
