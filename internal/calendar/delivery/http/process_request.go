package http

import (
	"github.com/gin-gonic/gin"
)

func (h *handler) processConnectReq(c *gin.Context) (connectReq, error) {
	var req connectReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

func (h *handler) processCallbackReq(c *gin.Context) (callbackReq, error) {
	var req callbackReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

func (h *handler) processAuthorizeReq(c *gin.Context) (authorizeReq, error) {
	var req authorizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

func (h *handler) processListEventsReq(c *gin.Context) (listEventsReq, error) {
	var req listEventsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

func (h *handler) processCreateEventReq(c *gin.Context) (createEventReq, error) {
	var req createEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

func (h *handler) processRefreshReq(c *gin.Context) (refreshReq, error) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}
