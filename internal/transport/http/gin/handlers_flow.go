package httpgin

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/cinebook/internal/flow"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
)

const (
	idemLockTTL     = 60 * time.Second
	flowEventBuffer = 64
	sseHeartbeat    = 15 * time.Second
)

// @Summary  Start a selection flow
// @Description Starts a new flow for the signed-in user and closes the one they had open. A remembered city is preselected.
// @Security BearerAuth
// @Success  201 {object} flow.Snapshot
// @Router   /flows [post]
func handleStartFlow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svcs.Selection.Start(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Location", "/flows/"+f.ID())
		c.JSON(http.StatusCreated, f.Snapshot())
	}
}

// @Summary  Get flow
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Success  200 {object} flow.Snapshot
// @Failure  404 {object} ErrorResponse
// @Router   /flows/{id} [get]
func handleGetFlow(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		c.JSON(http.StatusOK, f.Snapshot())
	})
}

// @Summary  Cancel flow
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /flows/{id} [delete]
func handleCancelFlow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Selection.Cancel(currentUser(c).ID, c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Select city
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    req body  FlowCityRequest true "payload"
// @Success  200 {object} flow.Snapshot
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/city [put]
func handleSelectCity(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		var req FlowCityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		writeTransition(c, f, f.SelectCity(c.Request.Context(), req.City))
	})
}

// @Summary  View movie
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    req body  MovieRequest true "payload"
// @Success  200 {object} flow.Snapshot
// @Failure  404 {object} ErrorResponse "flow or movie not found"
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/movie [put]
func handleViewMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MovieRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		snap, err := svcs.Selection.ViewMovie(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.MovieID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// @Summary  Select show date
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    req body  DateRequest true "payload, e.g. 12 Jan, 2025"
// @Success  200 {object} flow.Snapshot
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/date [put]
func handleSelectDate(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		var req DateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		writeTransition(c, f, f.SelectDate(req.Date))
	})
}

// @Summary  Select theater
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    req body  TheaterRequest true "payload"
// @Success  200 {object} flow.Snapshot
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/theater [put]
func handleSelectTheater(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		var req TheaterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		writeTransition(c, f, f.SelectTheater(req.Theater))
	})
}

// @Summary  Select show time
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    req body  TimeRequest true "payload, e.g. 7:00 PM"
// @Success  200 {object} flow.Snapshot
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/time [put]
func handleSelectTime(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		var req TimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		writeTransition(c, f, f.SelectTime(req.Time))
	})
}

// @Summary  Toggle seat
// @Description Selects the seat, or releases it when already selected.
// @Security BearerAuth
// @Param    id    path  string  true  "Flow ID"
// @Param    seat  path  string  true  "Seat code, e.g. A1"
// @Success  200 {object} flow.Snapshot
// @Failure  400 {object} ErrorResponse
// @Failure  422 {object} ErrorResponse
// @Router   /flows/{id}/seats/{seat} [post]
func handleToggleSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri SeatURI
		if err := c.ShouldBindUri(&uri); err != nil {
			badRequest(c, "invalid seat code")
			return
		}
		f, err := svcs.Selection.Get(currentUser(c).ID, uri.ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeTransition(c, f, f.ToggleSeat(uri.Seat))
	}
}

// @Summary  Confirm selection
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Success  200 {object} OrderResponse
// @Failure  422 {object} ErrorResponse "missing fields"
// @Router   /flows/{id}/confirm [post]
func handleConfirm(svcs *service.Services) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		o, err := f.Confirm()
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[OrderResponse](o)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// @Summary  Book confirmed selection (idempotent)
// @Security BearerAuth
// @Param    id  path  string  true  "Flow ID"
// @Param    Idempotency-Key header string false "retry key"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} TicketResponse
// @Failure  409 {object} ErrorResponse "submission or idem in progress"
// @Failure  410 {object} ErrorResponse "flow closed"
// @Failure  502 {object} ErrorResponse "booking failed"
// @Router   /flows/{id}/book [post]
func handleBook(svcs *service.Services, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner := currentUser(c).ID
		flowID := c.Param("id")

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(owner, flowID, idemKey)

			if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
				replayCreated(c, idemKey, payload)
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
					replayCreated(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		t, err := svcs.Selection.Book(ctx, owner, flowID)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp, err := mapTo[TicketResponse](t)
		if err != nil {
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(ctx, idemStorageKey, b)
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Stream flow transitions
// @Description Server-sent events: "snapshot" once, "change" per transition, "end" when the flow is booked or cancelled.
// @Security BearerAuth
// @Produce  text/event-stream
// @Param    id  path  string  true  "Flow ID"
// @Success  200 {object} FlowEvent
// @Failure  404 {object} ErrorResponse
// @Router   /flows/{id}/events [get]
func handleFlowEvents(svcs *service.Services, draining <-chan struct{}) gin.HandlerFunc {
	return withFlow(svcs, func(c *gin.Context, f *flow.Flow) {
		events := make(chan FlowEvent, flowEventBuffer)
		unsubscribe := f.Subscribe(func(prev, next flow.Snapshot) {
			select {
			case events <- FlowEvent{Changed: flow.Diff(prev, next), Flow: next}:
			default:
			}
		})
		defer unsubscribe()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		prepareSSE(c)
		c.SSEvent("snapshot", f.Snapshot())
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case <-draining:
				return false
			case ev := <-events:
				c.SSEvent("change", ev)
				return true
			case <-f.Context().Done():
				for {
					select {
					case ev := <-events:
						c.SSEvent("change", ev)
					default:
						c.SSEvent("end", f.Snapshot())
						return false
					}
				}
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
		})
	})
}

// withFlow resolves the :id flow of the signed-in user before calling h.
func withFlow(svcs *service.Services, h func(c *gin.Context, f *flow.Flow)) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svcs.Selection.Get(currentUser(c).ID, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		h(c, f)
	}
}

func writeTransition(c *gin.Context, f *flow.Flow, err error) {
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, f.Snapshot())
}

func replayCreated(c *gin.Context, idemKey string, payload []byte) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", payload)
}

func prepareSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}
