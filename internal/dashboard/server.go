package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/service"
	"github.com/omarshaarawi/courtside/internal/stats"
)

const noTradeMessage = "Please select a different team to trade with."

// Server is the read-only JSON API over the latest statistics.
type Server struct {
	echo         *echo.Echo
	statsService *service.StatsService
}

func NewServer(statsService *service.StatsService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{echo: e, statsService: statsService}

	e.GET("/health", s.health)
	api := e.Group("/api")
	api.GET("/players", s.players)
	api.GET("/rosters", s.rosters)
	api.GET("/teams", s.teams)
	api.GET("/teams/:team/relevances", s.teamRelevances)
	api.GET("/trades/:a/:b", s.trades)
	api.GET("/waivers/:team", s.waivers)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	slog.Info("Dashboard listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func window(c echo.Context) (stats.Window, error) {
	q := c.QueryParam("window")
	if q == "" {
		return stats.Season, nil
	}
	w, err := stats.ParseWindow(strings.ToLower(q))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return w, nil
}

func serviceError(err error) error {
	if errors.Is(err, service.ErrTeamNotFound) || errors.Is(err, service.ErrPlayerNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	slog.Error("Dashboard request failed", "error", err)
	return echo.NewHTTPError(http.StatusBadGateway, "statistics unavailable")
}

func (s *Server) health(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

type tableResponse struct {
	AsOf    string               `json:"as_of"`
	Window  stats.Window         `json:"window"`
	Columns []string             `json:"columns"`
	Rows    map[string]stats.Row `json:"rows"`
}

func (s *Server) table(c echo.Context, pick func(*pipeline.Results) stats.Table) error {
	w, err := window(c)
	if err != nil {
		return err
	}
	res, err := s.statsService.Results(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, tableResponse{
		AsOf:    res.AsOf.Format(pipeline.DateLayout),
		Window:  w,
		Columns: s.statsService.Columns(),
		Rows:    pick(res).Slice(w),
	})
}

func (s *Server) players(c echo.Context) error {
	return s.table(c, func(res *pipeline.Results) stats.Table { return res.NormalizedPlayers })
}

func (s *Server) rosters(c echo.Context) error {
	return s.table(c, func(res *pipeline.Results) stats.Table { return res.NormalizedRosters })
}

type teamResponse struct {
	Abbreviation string   `json:"abbrev"`
	Name         string   `json:"name"`
	Players      []string `json:"players"`
}

func (s *Server) teams(c echo.Context) error {
	res, err := s.statsService.Results(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	out := make([]teamResponse, 0, len(res.Teams))
	for _, t := range res.Teams {
		out = append(out, teamResponse{
			Abbreviation: t.Abbreviation,
			Name:         t.Name,
			Players:      res.Rosters[t.Abbreviation],
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) teamRelevances(c echo.Context) error {
	w, err := window(c)
	if err != nil {
		return err
	}
	ranking, err := s.statsService.TeamRanking(c.Request().Context(), c.Param("team"), w)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, ranking)
}

type tradeResponse struct {
	Available bool                  `json:"available"`
	Message   string                `json:"message,omitempty"`
	Trade     *service.TradeRanking `json:"trade,omitempty"`
}

// trades answers a missing comparison with an empty state, not an error.
func (s *Server) trades(c echo.Context) error {
	w, err := window(c)
	if err != nil {
		return err
	}
	ranking, ok, err := s.statsService.TradeRanking(c.Request().Context(), c.Param("a"), c.Param("b"), w)
	if err != nil {
		return serviceError(err)
	}
	if !ok {
		return c.JSON(http.StatusOK, tradeResponse{Message: noTradeMessage})
	}
	return c.JSON(http.StatusOK, tradeResponse{Available: true, Trade: ranking})
}

func (s *Server) waivers(c echo.Context) error {
	w, err := window(c)
	if err != nil {
		return err
	}
	limit := 25
	if q := c.QueryParam("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	ranking, err := s.statsService.WaiverRanking(c.Request().Context(), c.Param("team"), w, limit)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, ranking)
}
