package ranger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/http/resp"
	"github.com/xy-planning-network/messleave/http/router"
	"github.com/xy-planning-network/messleave/logger"
	"github.com/xy-planning-network/messleave/postgres"
)

// A Ranger manages and exposes all components of a messleave app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	ctx   context.Context
	db    *postgres.DB
	env   messleave.Environment
	flow  *auth.Flow
	l     logger.Logger
	srv   *http.Server
	url   *url.URL
	users auth.UserStore
}

// New constructs a Ranger from the provided options.
// User supplied options are applied first; defaults fill in whatever they left unset.
// Startup failure is the only fatal condition in a messleave app,
// so New returns an error for any component it cannot establish.
func New(opts ...RangerOption) (*Ranger, error) {
	r := new(Ranger)
	followups := make([]OptFollowup, 0)

	// NOTE: calling an option configures the *Ranger under construction.
	// Some options require data from other options.
	// These options, therefore, must delay configuring the *Ranger
	// until the initial set of options are run.
	// They return an OptFollowup to be called after that first pass.
	for _, opt := range append(opts, defaultOpts()...) {
		fn, err := opt(r)
		if err != nil {
			return r, fmt.Errorf("%w: %s", ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadConfig, err)
		}
	}

	return r, nil
}

func (r *Ranger) EmitDB() *postgres.DB          { return r.db }
func (r *Ranger) EmitFlow() *auth.Flow          { return r.flow }
func (r *Ranger) EmitLogger() logger.Logger     { return r.l }
func (r *Ranger) EmitUserStore() auth.UserStore { return r.users }
func (r *Ranger) Env() messleave.Environment    { return r.env }

// Guide begins the web server.
//
// These, and (*Ranger).Shutdown, stop Guide:
//
// - os.Interrupt
// - os.Kill
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (r *Ranger) Guide() error {
	var cancel context.CancelFunc
	r.ctx, cancel = context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		os.Kill,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)

	go func() {
		s := <-ch
		r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
		cancel()
	}()

	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		r.srv.Handler = r.Router
		if err := r.srv.ListenAndServe(); err != http.ErrServerClosed {
			err = fmt.Errorf("could not listen: %w", err)
			r.l.Error(err.Error(), nil)
		}
	}()

	<-r.ctx.Done()
	return r.Shutdown()
}

// Shutdown shutdowns the web server, draining in-flight requests for up to 5 seconds.
func (r *Ranger) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(shutdownCtx)
	if err == http.ErrServerClosed {
		r.l.Info("web server shutdown successfully", nil)
		return nil
	}

	if err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}
