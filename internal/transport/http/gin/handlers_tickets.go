package httpgin

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/tickets"
)

// @Summary  My tickets
// @Security BearerAuth
// @Success  200 {array} TicketResponse
// @Router   /tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Tickets.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[[]TicketResponse](list)
		if err != nil {
			respondErr(c, err)
			return
		}
		if resp == nil {
			resp = []TicketResponse{}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Get ticket
// @Security BearerAuth
// @Param    id  path  string  true  "Ticket ID"
// @Success  200 {object} TicketResponse
// @Failure  404 {object} ErrorResponse
// @Router   /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Tickets.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[TicketResponse](t)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Ticket QR code
// @Security BearerAuth
// @Produce  image/png
// @Param    id    path   string  true   "Ticket ID"
// @Param    size  query  int     false  "pixels, default 256"
// @Success  200
// @Failure  404 {object} ErrorResponse
// @Router   /tickets/{id}/qrcode [get]
func handleTicketQRCode(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Tickets.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		png, err := svcs.Tickets.QRCode(t, parseIntDefault(c.Query("size"), tickets.DefaultQRSize))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Cache-Control", "private, max-age=86400")
		c.Data(http.StatusOK, "image/png", png)
	}
}

// @Summary  Stream my new tickets
// @Description Server-sent "ticket" events for tickets booked by the signed-in user on any instance.
// @Security BearerAuth
// @Produce  text/event-stream
// @Success  200 {object} TicketResponse
// @Failure  503 {object} ErrorResponse
// @Router   /tickets/events [get]
func handleTicketEvents(svcs *service.Services, draining <-chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svcs.Tickets.Live() {
			respondErr(c, tickets.ErrNoFeed)
			return
		}

		userID := currentUser(c).ID
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		booked := make(chan domain.Ticket, flowEventBuffer)
		done := make(chan error, 1)
		go func() {
			done <- svcs.Tickets.Watch(ctx, userID, func(t domain.Ticket) {
				select {
				case booked <- t:
				default:
				}
			})
		}()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		prepareSSE(c)
		c.Writer.WriteHeader(http.StatusOK)
		c.Writer.Flush()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case <-draining:
				return false
			case t := <-booked:
				resp, err := mapTo[TicketResponse](t)
				if err != nil {
					return false
				}
				c.SSEvent("ticket", resp)
				return true
			case err := <-done:
				if err != nil {
					c.SSEvent("error", ErrorResponse{Error: "ticket feed interrupted"})
				}
				return false
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
		})
	}
}
