// Package server is a development backend for the reminder API. It serves
// the same routes as the production service from a SQLite store so the
// dashboard can run without it.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/reminder"
)

const basePath = "/api/v1/reminders"

// Store is the persistence the server needs. *reminder.Store satisfies it.
type Store interface {
	Add(ctx context.Context, d reminder.Draft) (*reminder.Reminder, error)
	List(ctx context.Context, f reminder.Filter) ([]reminder.Reminder, int, error)
	GetByID(ctx context.Context, id int64) (*reminder.Reminder, error)
	Update(ctx context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error)
	Complete(ctx context.Context, id int64) (*reminder.Reminder, error)
	Delete(ctx context.Context, id int64) error
}

// Options configures the server. Now defaults to time.Now.
type Options struct {
	AllowedOrigins []string
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// Server routes the reminder API onto a Store.
type Server struct {
	store    Store
	validate *reminder.Validator
	log      logrus.FieldLogger
	engine   *gin.Engine
}

// New builds the gin engine and registers the routes.
func New(store Store, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(gin.DefaultWriter)
		log = l
	}
	log = log.WithField("component", "server")

	s := &Server{
		store:    store,
		validate: reminder.NewValidator(opts.Now),
		log:      log,
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery(), RequestID(), Logger(log), CORS(opts.AllowedOrigins))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group(basePath)
	{
		api.GET("/all", s.list)
		api.GET("/get/:id", s.get)
		api.POST("/create", s.create)
		api.PUT("/update/:id", s.update)
		api.DELETE("/delete/:id", s.remove)
		api.PATCH("/complete/:id", s.complete)
	}
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
