package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/service"
)

// PeerHandler covers the peer registry plus both sides of the borrow
// protocol. Inbound protocol endpoints (/request, /requests/outgoing/:id)
// are called by remote libraries, the rest by the local UI.
type PeerHandler struct {
	peers  service.PeerService
	borrow service.BorrowService
}

func NewPeerHandler(peers service.PeerService, borrow service.BorrowService) *PeerHandler {
	return &PeerHandler{peers: peers, borrow: borrow}
}

func (h *PeerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/sync", h.Sync)
	rg.GET("/:id/books", h.Books)
	rg.POST("/:id/request", h.Borrow)

	rg.POST("/request", h.ReceiveRequest)
	rg.GET("/requests", h.ListRequests)
	rg.PUT("/requests/:id", h.UpdateRequest)
	rg.DELETE("/requests/:id", h.DeleteRequest)
	rg.GET("/requests/outgoing", h.ListOutgoing)
	rg.PUT("/requests/outgoing/:id", h.UpdateOutgoing)
}

func (h *PeerHandler) Create(c *gin.Context) {
	var req dto.CreatePeerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	peer, err := h.peers.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, peer)
}

func (h *PeerHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	peers, err := h.peers.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": peers, "total": len(peers)})
}

func (h *PeerHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	peer, err := h.peers.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, peer)
}

func (h *PeerHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdatePeerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	peer, err := h.peers.Update(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, peer)
}

func (h *PeerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.peers.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sync replicates the peer's catalog. The upstream fetch can be slow, so it
// gets a longer deadline than the usual CRUD calls.
func (h *PeerHandler) Sync(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*requestTimeout)
	defer cancel()

	count, err := h.peers.Sync(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": count})
}

func (h *PeerHandler) Books(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := h.peers.Books(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": books, "total": len(books)})
}

// Borrow asks the peer to lend a book and records the outgoing request.
func (h *PeerHandler) Borrow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.SendBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 6*requestTimeout)
	defer cancel()

	outgoing, err := h.borrow.RequestBook(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outgoing)
}

// ReceiveRequest is the lender-side protocol endpoint a remote peer posts to.
func (h *PeerHandler) ReceiveRequest(c *gin.Context) {
	var req dto.ReceiveBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	request, err := h.borrow.ReceiveRequest(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": request.ID, "status": request.Status})
}

func (h *PeerHandler) ListRequests(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	requests, err := h.borrow.ListRequests(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": requests, "total": len(requests)})
}

func (h *PeerHandler) UpdateRequest(c *gin.Context) {
	var req dto.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 6*requestTimeout)
	defer cancel()

	request, err := h.borrow.UpdateRequestStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *PeerHandler) DeleteRequest(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.borrow.DeleteRequest(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PeerHandler) ListOutgoing(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	requests, err := h.borrow.ListOutgoing(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": requests, "total": len(requests)})
}

// UpdateOutgoing is the borrower-side protocol endpoint: the lending peer
// calls it to report accepted, rejected or returned.
func (h *PeerHandler) UpdateOutgoing(c *gin.Context) {
	var req dto.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	request, err := h.borrow.UpdateOutgoingStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
