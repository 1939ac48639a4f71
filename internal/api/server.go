package api

import (
	"time"

	"church-attendance/internal/service"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Gatherings  *service.GatheringService
	Calendar    *service.CalendarService
	People      *service.PeopleService
	Attendance  *service.AttendanceService
	Reports     *service.ReportService
	Users       *service.UserService
	Invitations *service.InvitationService
}

type Options struct {
	APIKey    string
	RateLimit int
	Location  *time.Location
}

type Server struct {
	app      *fiber.App
	svc      Services
	validate *validator.Validate
	location *time.Location
	logger   *logrus.Logger
}

func NewServer(svc Services, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	app := fiber.New(fiber.Config{
		AppName:               "church-attendance",
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return Error(c, code, err.Error())
		},
	})

	s := &Server{
		app:      app,
		svc:      svc,
		validate: validator.New(),
		location: opts.Location,
		logger:   logger,
	}

	app.Use(RecoveryMiddleware())
	app.Use(RequestIDMiddleware())
	app.Use(LoggerMiddleware(opts.Location))
	app.Use(CorsMiddleware())
	app.Use(RateLimiter(opts.RateLimit))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return Success(c, "ok", fiber.Map{"time": time.Now().In(s.location).Format(time.RFC3339)})
	})

	s.routes(app.Group("/api", APIKeyMiddleware(opts.APIKey)))
	return s
}

func (s *Server) routes(r fiber.Router) {
	g := r.Group("/gatherings")
	g.Get("/", s.listGatherings)
	g.Post("/", s.createGathering)
	g.Get("/:id", s.getGathering)
	g.Put("/:id", s.updateGathering)
	g.Delete("/:id", s.deleteGathering)
	g.Put("/:id/roster", s.setRoster)
	g.Get("/:id/occurrences", s.occurrences)
	g.Get("/:id/calendar.ics", s.calendar)
	g.Get("/:id/attendance/:date", s.getAttendance)
	g.Put("/:id/attendance/:date", s.recordAttendance)

	r.Get("/families", s.listFamilies)
	r.Post("/families/import", s.importFamily)
	r.Get("/individuals", s.listIndividuals)
	r.Post("/individuals", s.createIndividual)
	r.Post("/individuals/:id/contact", s.toggleContact)

	r.Get("/reports/summary", s.summary)

	r.Get("/users", s.listUsers)
	r.Get("/invitations", s.listInvitations)
	r.Post("/invitations", s.createInvitation)
	r.Post("/invitations/:token/accept", s.acceptInvitation)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.WithField("addr", addr).Info("HTTP server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// bind parses and validates the request body into req. When ok is false the
// error response has already been written and err is what the handler returns.
func (s *Server) bind(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}
