package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/catalog"
)

// @Summary  Cities a flow can start in
// @Success  200 {object} CitiesResponse
// @Router   /cities [get]
func handleListCities(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, CitiesResponse{Cities: svcs.Catalog.Cities()}, "public, max-age=3600", false)
	}
}

// @Summary  Movies now showing and upcoming
// @Success  200 {object} MoviesResponse
// @Failure  502 {object} ErrorResponse
// @Router   /movies [get]
func handleListMovies(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sections, err := svcs.Catalog.Sections(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[MoviesResponse](sections)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 30s
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=30", true)
	}
}

// @Summary  Get movie
// @Param    id  path  string  true  "Movie ID"
// @Success  200  {object}  MovieResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /movies/{id} [get]
func handleGetMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svcs.Catalog.GetMovie(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[MovieResponse](m)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=60", true)
	}
}

// @Summary  Create movie
// @Param    X-Admin-Key header string true "admin key"
// @Param    req body  CreateMovieRequest true "payload"
// @Success  201 {object} MovieResponse
// @Failure  403 {object} ErrorResponse
// @Failure  422 {object} ErrorResponse
// @Router   /admin/movies [post]
func handleCreateMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMovieRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		status, ok := domain.ParseMovieStatus(req.Status)
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "status must be now_showing or upcoming"})
			return
		}

		in, err := mapTo[catalog.NewMovie](req)
		if err != nil {
			respondErr(c, err)
			return
		}
		in.Status = status

		m, err := svcs.Catalog.CreateMovie(c.Request.Context(), in)
		if err != nil {
			respondErr(c, err)
			return
		}
		resp, err := mapTo[MovieResponse](m)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}
