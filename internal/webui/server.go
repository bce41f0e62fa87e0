// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webui serves the interactive similarity search UI: a search form,
// the ranked result list, and a history sidebar with reload and delete.
package webui

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/privylens/internal/history"
	"github.com/pdiddy/privylens/internal/pipeline"
	"github.com/pdiddy/privylens/internal/provider"
	"github.com/pdiddy/privylens/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server hosts the web UI.
type Server struct {
	echo     *echo.Echo
	log      *zap.Logger
	pipeline *pipeline.Pipeline
	archive  *history.Archive
}

// pageData is everything the page template needs for one render.
type pageData struct {
	Engines  []string
	Selected string
	Query    string
	Raw      bool
	Keywords string
	Searched bool
	Results  []types.ScoredResult
	Dropped  int
	History  []providerHistory
	Error    string
	Notice   string
}

type providerHistory struct {
	Provider string
	Entries  []history.Entry
}

// NewServer builds the echo application around the pipeline and archive.
func NewServer(p *pipeline.Pipeline, archive *history.Archive, log *zap.Logger) *Server {
	s := &Server{
		echo:     echo.New(),
		log:      log,
		pipeline: p,
		archive:  archive,
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Renderer = newRenderer()

	s.echo.GET("/", s.index)
	s.echo.POST("/search", s.search)
	s.echo.GET("/saved", s.reload)
	s.echo.POST("/saved/delete", s.delete)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.log.Info("starting web UI", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) index(c echo.Context) error {
	data, err := s.basePage("")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index", data)
}

func (s *Server) search(c echo.Context) error {
	req := pipeline.Request{
		Provider: c.FormValue("engine"),
		Query:    c.FormValue("query"),
		Raw:      c.FormValue("raw") == "on",
	}

	data, err := s.basePage(req.Provider)
	if err != nil {
		return err
	}
	data.Query = req.Query
	data.Raw = req.Raw

	var progress bytes.Buffer
	out, runErr := s.pipeline.Run(c.Request().Context(), req, &progress)
	if progress.Len() > 0 {
		s.log.Warn("pipeline progress", zap.String("output", progress.String()))
	}
	if runErr != nil {
		s.log.Error("search failed", zap.String("provider", req.Provider), zap.Error(runErr))
		data.Error = runErr.Error()
		return c.Render(http.StatusOK, "index", data)
	}

	data.Searched = true
	data.Keywords = out.Keywords
	data.Results = out.Results
	data.Dropped = out.Dropped

	// The save created a new history entry; refresh the sidebar.
	if hist, histErr := s.historyGroups(); histErr == nil {
		data.History = hist
	}
	return c.Render(http.StatusOK, "index", data)
}

// reload re-reads a saved search from disk without recomputation.
func (s *Server) reload(c echo.Context) error {
	providerName := c.QueryParam("provider")
	keywords := c.QueryParam("q")

	data, err := s.basePage(providerName)
	if err != nil {
		return err
	}
	data.Keywords = keywords

	results, loadErr := s.archive.Load(providerName, keywords)
	if loadErr != nil {
		if errors.Is(loadErr, history.ErrNotFound) {
			data.Error = "Saved search not found: " + keywords
		} else {
			s.log.Error("reload failed", zap.Error(loadErr))
			data.Error = loadErr.Error()
		}
		return c.Render(http.StatusOK, "index", data)
	}

	data.Searched = true
	data.Results = results
	return c.Render(http.StatusOK, "index", data)
}

func (s *Server) delete(c echo.Context) error {
	providerName := c.FormValue("provider")
	keywords := c.FormValue("q")

	notice := "Deleted: " + providerName + "/" + keywords
	if err := s.archive.Delete(providerName, keywords); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			notice = "Not found: " + providerName + "/" + keywords
		} else {
			s.log.Error("delete failed", zap.Error(err))
			notice = err.Error()
		}
	}

	data, err := s.basePage(providerName)
	if err != nil {
		return err
	}
	data.Notice = notice
	return c.Render(http.StatusOK, "index", data)
}

func (s *Server) basePage(selected string) (pageData, error) {
	if selected == "" {
		selected = provider.ArxivName
	}
	data := pageData{
		Engines:  provider.Names(),
		Selected: selected,
	}
	hist, err := s.historyGroups()
	if err != nil {
		return data, err
	}
	data.History = hist
	return data, nil
}

// historyGroups orders the sidebar by the fixed provider order so the
// grouping is stable across renders.
func (s *Server) historyGroups() ([]providerHistory, error) {
	grouped, err := s.archive.ListGrouped()
	if err != nil {
		return nil, err
	}
	var out []providerHistory
	for _, name := range provider.Names() {
		if entries := grouped[name]; len(entries) > 0 {
			out = append(out, providerHistory{Provider: name, Entries: entries})
		}
	}
	return out, nil
}

// renderer adapts html/template to echo's Renderer interface.
type renderer struct {
	tmpl *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		tmpl: template.Must(template.New("").Funcs(template.FuncMap{
			"score": func(v float64) string { return fmt.Sprintf("%.2f", v) },
			"date":  func(t time.Time) string { return t.Format("2006-01-02") },
		}).ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
