package core

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *handlers) Follow(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request FollowRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil || request.User1 == "" || request.User2 == "" {
		log.Ctx(ctx).Error().Err(err).Msg("user1 and user2 are required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("user1 and user2 are required", err))

		return
	}

	if strings.EqualFold(request.User1, request.User2) {
		log.Ctx(ctx).Error().Msg("cannot follow yourself")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("cannot follow yourself"))

		return
	}

	err = h.repository.AddFollow(ctx, request.User1, request.User2)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("adding follow failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("adding follow failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Followed"})
}

func (h *handlers) Unfollow(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request FollowRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil || request.User1 == "" || request.User2 == "" {
		log.Ctx(ctx).Error().Err(err).Msg("user1 and user2 are required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("user1 and user2 are required", err))

		return
	}

	err = h.repository.RemoveFollow(ctx, request.User1, request.User2)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("removing follow failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("removing follow failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

func (h *handlers) GetFollows(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	follows, err := h.repository.ListFollows(ctx, username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing follows failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("listing follows failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"follows": follows})
}

func (h *handlers) GetFollowers(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	followers, err := h.repository.ListFollowers(ctx, username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing followers failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("listing followers failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *handlers) GetChatMessages(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	messages, err := h.repository.ListChatMessages(ctx, id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing chat messages failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("listing chat messages failed", err))

		return
	}

	gctx.JSON(http.StatusOK, messages)
}

func (h *handlers) PostChatMessage(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := h.eventId(gctx)
	if !ok {
		return
	}

	var request ChatRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil || request.Username == "" || strings.TrimSpace(request.Message) == "" {
		log.Ctx(ctx).Error().Err(err).Msg("username and message are required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("username and message are required", err))

		return
	}

	message := &ChatMessage{
		EventId:  id,
		Username: request.Username,
		Message:  request.Message,
	}

	saved, err := h.repository.SaveChatMessage(ctx, message)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("saving chat message failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("saving chat message failed", err))

		return
	}

	gctx.JSON(http.StatusCreated, saved)
}
