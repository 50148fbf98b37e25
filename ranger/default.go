package ranger

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/http/authapi"
	"github.com/xy-planning-network/messleave/http/middleware"
	"github.com/xy-planning-network/messleave/http/resp"
	"github.com/xy-planning-network/messleave/http/router"
	"github.com/xy-planning-network/messleave/logger"
	"github.com/xy-planning-network/messleave/postgres"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// Client defaults
	ClientURLEnvVar  = "CLIENT_URL"
	defaultClientURL = "http://localhost:5173"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Google sign-in defaults
	GoogleClientIDEnvVar = "GOOGLE_CLIENT_ID"

	// Session token defaults
	SessionKeyEnvVar = "SESSION_KEY"
	sessionTTLEnvVar = "SESSION_TTL"

	// Database defaults
	dbHostEnvVar         = "DATABASE_HOST"
	defaultDBHost        = "localhost"
	dbNameEnvVar         = "DATABASE_NAME"
	dbPassEnvVar         = "DATABASE_PASSWORD"
	dbPortEnvVar         = "DATABASE_PORT"
	defaultDBPort        = "5432"
	dbSSLModeEnvVar      = "DATABASE_SSLMODE"
	defaultDBSSLMode     = "prefer"
	dbURLEnvVar          = "DATABASE_URL"
	dbUserEnvVar         = "DATABASE_USER"
	dbMaxIdleCxnsEnvVar  = "DATABASE_MAX_IDLE_CXNS"
	defaultDBMaxIdleCxns = 1

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Test defaults
	dbTestHostEnvVar     = "DATABASE_TEST_HOST"
	defaultDBTestHost    = "localhost"
	dbTestNameEnvVar     = "DATABASE_TEST_NAME"
	dbTestPassEnvVar     = "DATABASE_TEST_PASSWORD"
	dbTestPortEnvVar     = "DATABASE_TEST_PORT"
	defaultDBTestPort    = "5432"
	dbTestURLEnvVar      = "DATABASE_TEST_URL"
	dbTestUserEnvVar     = "DATABASE_TEST_USER"
	dbTestSSLModeEnvVar  = "DATABASE_TEST_SSLMODE"
	defaultDBTestSSLMode = "prefer"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// defaultOpts fills in whatever components user supplied options left unset,
// in dependency order.
func defaultOpts() []RangerOption {
	return []RangerOption{
		defaultEnv(),
		defaultLogger(),
		defaultResponder(),
		defaultDB(),
		defaultAuth(),
		defaultRouter(),
	}
}

// defaultEnv reads the Environment and base URL out of env vars
// unless options already set them.
func defaultEnv() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if rng.env == "" {
			rng.env = messleave.EnvVarOrEnv(environmentEnvVar, messleave.Development)
		}

		if rng.ctx == nil {
			rng.ctx = context.Background()
		}

		rng.url = messleave.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)

		return nil, nil
	}
}

func defaultLogger() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.l != nil {
				return nil
			}

			rng.l = logger.New(
				logger.WithEnv(rng.env.String()),
				logger.WithLevel(logger.NewLogLevel(os.Getenv(logLevelEnvVar))),
			)

			return nil
		}, nil
	}
}

func defaultResponder() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.Responder != nil {
				return nil
			}

			rng.Responder = resp.NewResponder(resp.WithLogger(rng.l))

			return nil
		}, nil
	}
}

// defaultDB connects to Postgres using the DATABASE env vars
// and brings the schema up to date.
func defaultDB() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.db != nil {
				return nil
			}

			db, err := postgres.Connect(NewPostgresConfig(rng.env), rng.env)
			if err != nil {
				return err
			}

			if err := postgres.MigrateUp(db, Migrations()); err != nil {
				return err
			}

			rng.db = db

			return nil
		}, nil
	}
}

// defaultAuth assembles the Google sign-in flow out of the GOOGLE_CLIENT_ID,
// SESSION_KEY and SESSION_TTL env vars and the postgres-backed user store.
func defaultAuth() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.users == nil {
				users, err := postgres.NewUserStore(rng.db)
				if err != nil {
					return err
				}

				rng.users = users
			}

			if rng.flow != nil {
				return nil
			}

			verifier, err := auth.NewGoogleVerifier(os.Getenv(GoogleClientIDEnvVar))
			if err != nil {
				return err
			}

			codec, err := auth.NewCodec(
				os.Getenv(SessionKeyEnvVar),
				messleave.EnvVarOrDuration(sessionTTLEnvVar, auth.DefaultSessionTTL),
			)
			if err != nil {
				return err
			}

			rng.flow, err = auth.NewFlow(verifier, rng.users, codec, rng.l)

			return err
		}, nil
	}
}

// defaultRouter builds the API surface: every-request middleware,
// the /api subrouter with the authentication endpoints, and a 404 fallback.
func defaultRouter() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.Router != nil {
				return nil
			}

			logReq := middleware.LogRequest(rng.l)
			r := router.New(rng.env.String(), logReq)
			r.OnEveryRequest(
				middleware.InjectIPAddress(),
				middleware.RateLimit(middleware.NewVisitors()),
				middleware.RequestID(),
				logReq,
				middleware.CORS(messleave.EnvVarOrString(ClientURLEnvVar, defaultClientURL)),
			)

			h := authapi.NewHandler(rng.Responder, rng.flow, rng.users)
			r.Handle(router.Route{Path: "/", Method: http.MethodGet, Handler: h.Root})

			api := r.Subrouter("/api")
			api.UnauthedRoutes(h.UnauthedRoutes())
			api.AuthedRoutes(h.AuthedRoutes(), middleware.CurrentUser(rng.Responder, rng.flow))

			r.HandleNotFound(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			if rng.srv == nil {
				rng.srv = defaultServer(rng.ctx)
			}

			rng.Router = r
			rng.srv.Handler = r

			return nil
		}, nil
	}
}

// NewPostgresConfig constructs a *postgres.CxnConfig appropriate to the given environment.
// Confer the DATABASE env vars for usage.
func NewPostgresConfig(env messleave.Environment) *postgres.CxnConfig {
	var cfg *postgres.CxnConfig
	url := os.Getenv(dbURLEnvVar)
	switch {
	case env.IsTesting():
		cfg = &postgres.CxnConfig{
			Host:     messleave.EnvVarOrString(dbTestHostEnvVar, defaultDBTestHost),
			IsTestDB: true,
			Name:     os.Getenv(dbTestNameEnvVar),
			Password: os.Getenv(dbTestPassEnvVar),
			Port:     messleave.EnvVarOrString(dbTestPortEnvVar, defaultDBTestPort),
			SSLMode:  messleave.EnvVarOrString(dbTestSSLModeEnvVar, defaultDBTestSSLMode),
			User:     os.Getenv(dbTestUserEnvVar),
		}

	case url == "":
		cfg = &postgres.CxnConfig{
			Host:     messleave.EnvVarOrString(dbHostEnvVar, defaultDBHost),
			IsTestDB: false,
			Name:     os.Getenv(dbNameEnvVar),
			Password: os.Getenv(dbPassEnvVar),
			Port:     messleave.EnvVarOrString(dbPortEnvVar, defaultDBPort),
			SSLMode:  messleave.EnvVarOrString(dbSSLModeEnvVar, defaultDBSSLMode),
			User:     os.Getenv(dbUserEnvVar),
		}

	default:
		cfg = &postgres.CxnConfig{IsTestDB: false, URL: url}
	}

	cfg.MaxIdleCxns = messleave.EnvVarOrInt(dbMaxIdleCxnsEnvVar, defaultDBMaxIdleCxns)

	return cfg
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := messleave.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  messleave.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  messleave.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: messleave.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}
