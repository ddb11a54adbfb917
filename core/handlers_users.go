package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func (h *handlers) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request RegisterRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	err = ValidateRegistration(request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("registration validation failed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("registration validation failed", err))

		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("hashing password failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("hashing password failed", err))

		return
	}

	user, err := h.repository.CreateUser(ctx, strings.TrimSpace(request.Username), string(hash))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			log.Ctx(ctx).Info().Str("username", request.Username).Msg("username already exists")
			gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("username already exists", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("creating user failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("creating user failed", err))

		return
	}

	gctx.JSON(http.StatusCreated, gin.H{"id": user.Id, "username": user.Username})
}

func (h *handlers) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request LoginRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	user, err := h.repository.GetUserByUsername(ctx, request.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Ctx(ctx).Info().Str("username", request.Username).Msg("user not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("user not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting user failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting user failed", err))

		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password))
	if err != nil {
		log.Ctx(ctx).Info().Str("username", request.Username).Msg("invalid credentials")
		gctx.AbortWithStatusJSON(http.StatusUnauthorized, NewError("invalid credentials", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"id": user.Id, "username": user.Username})
}

// GetProfile replies with the stored profile document plus the username, so a
// user with no saved profile still resolves.
func (h *handlers) GetProfile(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	user, err := h.repository.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Ctx(ctx).Info().Str("username", username).Msg("user not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("user not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting user failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting user failed", err))

		return
	}

	profile, err := h.repository.GetProfile(ctx, user.Username)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("getting profile failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting profile failed", err))

		return
	}

	profile["username"] = user.Username

	gctx.JSON(http.StatusOK, profile)
}

func (h *handlers) PutProfile(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	user, err := h.repository.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Ctx(ctx).Info().Str("username", username).Msg("user not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("user not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting user failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting user failed", err))

		return
	}

	var profile Profile

	err = gctx.ShouldBindJSON(&profile)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	// A JSON null body binds a nil map; store it as an empty document.
	if profile == nil {
		profile = Profile{}
	}

	delete(profile, "username")

	err = h.repository.SaveProfile(ctx, user.Username, profile)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("saving profile failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("saving profile failed", err))

		return
	}

	profile["username"] = user.Username

	gctx.JSON(http.StatusOK, profile)
}

// GetInviteCode returns the user's invite code, minting one on first request.
func (h *handlers) GetInviteCode(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	username := gctx.Param("username")

	user, err := h.repository.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Ctx(ctx).Info().Str("username", username).Msg("user not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("user not found", err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting user failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("getting user failed", err))

		return
	}

	if user.InviteCode == "" {
		code := fmt.Sprintf("CITE-%s", strings.ToUpper(uuid.NewString()[:8]))

		err = h.repository.SetInviteCode(ctx, user.Username, code)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("setting invite code failed")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("setting invite code failed", err))

			return
		}

		user.InviteCode = code
	}

	gctx.JSON(http.StatusOK, gin.H{"inviteCode": user.InviteCode})
}

func (h *handlers) ValidateInvite(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	code := gctx.Query("code")
	if code == "" {
		log.Ctx(ctx).Error().Msg("parameter 'code' is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'code' is required"))

		return
	}

	user, err := h.repository.GetUserByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			gctx.JSON(http.StatusNotFound, gin.H{"valid": false})

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("validating invite code failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("validating invite code failed", err))

		return
	}

	gctx.JSON(http.StatusOK, gin.H{"valid": true, "username": user.Username})
}
