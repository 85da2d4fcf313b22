package http

import (
	"errors"
	"net/http"

	"calendar-integration/internal/calendar"
	"calendar-integration/pkg/response"

	"github.com/gin-gonic/gin"
)

// Connect godoc
// @Summary     Start the consent flow
// @Description Returns the provider consent URL for a user. The URL always requests offline access and forces re-consent.
// @Tags        Calendar
// @Produce     json
// @Param       user_id query string   true  "Caller's user id"
// @Param       scope   query []string false "Scopes to request (defaults to the configured scopes)"
// @Success     200 {object} connectResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Router      /api/v1/calendar/connect [GET]
func (h *handler) Connect(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processConnectReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	state := h.state.Sign(req.UserID)
	output, err := h.uc.Connect(ctx, calendar.ConnectInput{State: state, Scopes: req.Scopes})
	if err != nil {
		h.l.Errorf(ctx, "uc.Connect: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newConnectResp(output, state))
}

// OAuthCallback godoc
// @Summary     Consent redirect target
// @Description Verifies the signed state, exchanges the authorization code and stores the credential.
// @Tags        Calendar
// @Produce     json
// @Param       code  query string true  "Authorization code"
// @Param       state query string true  "State issued by /connect"
// @Param       error query string false "Set by the provider when consent was declined"
// @Success     200 {object} credentialResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     401 {object} response.Resp "Code rejected"
// @Failure     502 {object} response.Resp "Provider unavailable"
// @Router      /api/v1/calendar/oauth/callback [GET]
func (h *handler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processCallbackReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := h.state.Verify(req.State)
	if err != nil {
		h.l.Warnf(ctx, "OAuthCallback: rejected state: %v", err)
		response.Error(c, errors.New("invalid state"))
		return
	}

	output, err := h.uc.Authorize(ctx, calendar.AuthorizeInput{UserID: userID, Code: req.Code})
	if err != nil {
		h.l.Errorf(ctx, "uc.Authorize: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newCredentialResp(output.Credential))
}

// Authorize godoc
// @Summary     Exchange an authorization code
// @Description Exchanges a single-use authorization code obtained out of band and stores the credential.
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       body body authorizeReq true "User id and code"
// @Success     200 {object} credentialResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     401 {object} response.Resp "Code rejected"
// @Failure     502 {object} response.Resp "Provider unavailable"
// @Router      /api/v1/calendar/authorize [POST]
func (h *handler) Authorize(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processAuthorizeReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.Authorize(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.Authorize: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newCredentialResp(output.Credential))
}

// ListEvents godoc
// @Summary     List events in a local time range
// @Description Returns events overlapping [start, end) interpreted in timezone, ordered by start, recurring events expanded. start must not be after end.
// @Tags        Calendar
// @Produce     json
// @Param       user_id     query string true  "User id"
// @Param       start       query string true  "Local start, e.g. 2024-03-09T00:00"
// @Param       end         query string true  "Local end, e.g. 2024-03-11T00:00"
// @Param       timezone    query string true  "IANA timezone, e.g. America/Los_Angeles"
// @Param       calendar_id query string false "Calendar id (default primary)"
// @Success     200 {object} listEventsResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     401 {object} response.Resp "Re-authorization required"
// @Failure     404 {object} response.Resp "User not registered"
// @Failure     502 {object} response.Resp "Provider error"
// @Router      /api/v1/calendar/events [GET]
func (h *handler) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processListEventsReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.ListEventsInRange(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.ListEventsInRange: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newListEventsResp(output))
}

// CreateEvent godoc
// @Summary     Create an event
// @Description Books an event. Without reminders, email 24h before and popup 10 minutes before are set.
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       body body createEventReq true "Event draft"
// @Success     201 {object} createEventResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     401 {object} response.Resp "Re-authorization required"
// @Failure     404 {object} response.Resp "User not registered"
// @Failure     502 {object} response.Resp "Provider rejected the event"
// @Router      /api/v1/calendar/events [POST]
func (h *handler) CreateEvent(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processCreateEventReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.CreateEvent(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.CreateEvent: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	c.JSON(http.StatusCreated, response.NewOKResp(h.newCreateEventResp(output)))
}

// RefreshToken godoc
// @Summary     Refresh a stored credential
// @Description Forces a refresh of the user's access token. A new refresh token replaces the stored one only if the provider issued one.
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       body body refreshReq true "User id"
// @Success     200 {object} credentialResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     401 {object} response.Resp "Re-authorization required"
// @Failure     404 {object} response.Resp "User not registered"
// @Failure     502 {object} response.Resp "Provider error"
// @Router      /api/v1/calendar/tokens/refresh [POST]
func (h *handler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processRefreshReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.RefreshAccessToken(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.RefreshAccessToken: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newCredentialResp(output.Credential))
}
