package web

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/dashdoc/webmanager/internal/hubspot"
	"github.com/dashdoc/webmanager/internal/logging"
	"github.com/dashdoc/webmanager/internal/model"
	"github.com/dashdoc/webmanager/internal/notes"
	"github.com/dashdoc/webmanager/internal/pipeline"
	"github.com/dashdoc/webmanager/internal/storyblok"
	"github.com/dashdoc/webmanager/internal/view"
)

// maxAudioBytes matches the transcription upload limit
const maxAudioBytes = 25 << 20

const sessionTTL = 12 * time.Hour

// ContentService loads the joined dataset and regroups pages
type ContentService interface {
	Load(ctx context.Context, dr model.DateRange) (*pipeline.Dataset, error)
	GroupPages(ctx context.Context, ids []int64) (storyblok.GroupOutcome, error)
}

// CRM is the CRM surface used by the notes tool
type CRM interface {
	notes.CRM
	GetCompany(ctx context.Context, id string) (*hubspot.Company, error)
	CompanyURL(id string) string
}

// Deps are the collaborators of the dashboard. Notes and CRM may be nil,
// which disables the matching features.
type Deps struct {
	Config  *model.Config
	Content ContentService
	Links   view.Linker
	Notes   *notes.Processor
	Schema  *notes.Schema
	CRM     CRM
	Log     logging.Logger
	Now     func() time.Time
}

// Server is the fiber dashboard
type Server struct {
	cfg      *model.Config
	content  ContentService
	links    view.Linker
	notes    *notes.Processor
	schema   *notes.Schema
	crm      CRM
	log      logging.Logger
	now      func() time.Time
	sessions *Sessions
	app      *fiber.App
}

// New builds the server and its routes
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Content == nil {
		return nil, fmt.Errorf("content service is required")
	}

	s := &Server{
		cfg:      deps.Config,
		content:  deps.Content,
		links:    deps.Links,
		notes:    deps.Notes,
		schema:   deps.Schema,
		crm:      deps.CRM,
		log:      logging.OrNop(deps.Log),
		now:      deps.Now,
		sessions: NewSessions(sessionTTL),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.schema == nil {
		if s.notes != nil {
			s.schema = s.notes.Schema()
		} else {
			s.schema = notes.SalesSchema(nil)
		}
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "Marketing Website Manager",
		BodyLimit:             maxAudioBytes + 1<<20,
		DisableStartupMessage: true,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(logger.New())

	if !s.cfg.IsDev() {
		s.app.Use(basicauth.New(basicauth.Config{
			Users: map[string]string{s.cfg.Auth.Username: s.cfg.Auth.Password},
			Realm: "webmanager",
		}))
	}

	s.app.Get("/", s.handleHome)

	s.app.Get("/groups", s.handleGroups)
	s.app.Get("/pages", s.handlePages)
	s.app.Post("/pages/group", s.handleGroupPages)

	s.app.Get("/notes", s.handleNotes)
	s.app.Post("/notes/company", s.handleNotesCompany)
	s.app.Post("/notes/audio", s.handleNotesAudio)
	s.app.Post("/notes/fields", s.handleNotesFields)
	s.app.Post("/notes/reset", s.handleNotesReset)
	s.app.Post("/notes/push", s.handleNotesPush)
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the app is shut down
func (s *Server) Listen(addr string) error {
	s.log.Info("dashboard listening", "addr", addr, "dev", s.cfg.IsDev())
	return s.app.Listen(addr)
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// session resolves or creates the caller's session and locks it.
// The returned func unlocks it.
func (s *Server) session(c *fiber.Ctx) (*Session, func()) {
	sess, created := s.sessions.Get(c.Cookies(sessionCookie), s.schema)
	if created {
		s.log.Debug("session started", "active_sessions", s.sessions.Len())
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			MaxAge:   int(sessionTTL.Seconds()),
		})
	}
	sess.mu.Lock()
	return sess, sess.mu.Unlock
}

func devMode(c *fiber.Ctx) bool {
	v := c.Query("dev")
	if v == "" {
		v = c.FormValue("dev")
	}
	return v == "1" || v == "true" || v == "on"
}

// Tool is one entry of the tool selector
type Tool struct {
	Name        string
	Path        string
	Description string
	Available   bool
}

func (s *Server) tools() []Tool {
	return []Tool{
		{Name: "Page Language Grouping", Path: "/groups", Description: "Pages grouped by translation across locales", Available: true},
		{Name: "Page List", Path: "/pages", Description: "Every story, with multi-select grouping", Available: true},
		{Name: "Post-Sales Notes", Path: "/notes", Description: "Voice notes to CRM fields", Available: s.notes != nil},
		{Name: "Content Management", Description: "Coming soon"},
		{Name: "Analytics Dashboard", Description: "Coming soon"},
		{Name: "SEO Tools", Description: "Coming soon"},
	}
}

type layoutData struct {
	Title    string
	Active   string
	Dev      bool
	Tools    []Tool
	Messages []Message
}

func (s *Server) layout(c *fiber.Ctx, title, active string) layoutData {
	return layoutData{
		Title:  title,
		Active: active,
		Dev:    devMode(c),
		Tools:  s.tools(),
	}
}

func (s *Server) handleHome(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, Home(s.layout(c, "Marketing Website Manager", "/")))
}
