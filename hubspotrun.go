// Package hubspotrun executes HubSpot API fixtures and answers bridge queries
// against the HubSpot CRM. The cmd/hubspotrun binary is a thin layer over it.
package hubspotrun

import (
	"context"
	"io"

	"github.com/loykin/hubspotrun/internal/auth"
	"github.com/loykin/hubspotrun/internal/bridge"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/env"
	"github.com/loykin/hubspotrun/internal/handler"
	"github.com/loykin/hubspotrun/internal/store"
	"github.com/loykin/hubspotrun/pkg/fixture"
)

// Re-export commonly used types for public API

type (
	Input          = fixture.Input
	ConnectionInfo = fixture.ConnectionInfo
	RequestSpec    = fixture.RequestSpec
)

const (
	ErrorHandlingMessage = fixture.ErrorHandlingMessage
	ErrorHandlingRaise   = fixture.ErrorHandlingRaise
	DefaultAPILocation   = fixture.DefaultAPILocation
)

// TicketCreate returns the canonical ticket creation fixture.
func TicketCreate() Input { return fixture.TicketCreate() }

// LoadFixture reads a .json, .yaml or .yml fixture.
func LoadFixture(path string) (Input, error) { return fixture.Load(path) }

// Handler executes fixtures against the HubSpot API.
type (
	Handler        = handler.Handler
	HandlerOptions = handler.Options
	Executor       = handler.Executor
	Result         = handler.Result
	HandlerError   = handler.Error
	Stub           = handler.Stub
)

var ErrRequestFailed = handler.ErrRequestFailed

func NewHandler(opts HandlerOptions) *Handler { return handler.New(opts) }

// Execute runs in with a default handler.
func Execute(ctx context.Context, in Input) (Result, error) {
	return handler.New(handler.Options{}).Execute(ctx, in)
}

// Bridge adapter
type (
	BridgeAdapter = bridge.Adapter
	BridgeConfig  = bridge.Config
	BridgeRequest = bridge.Request
	Record        = bridge.Record
	RecordList    = bridge.RecordList
)

func NewBridge(ctx context.Context, cfg BridgeConfig) (*BridgeAdapter, error) {
	return bridge.New(ctx, cfg)
}

// Auth
type (
	Auth        = auth.Auth
	AuthMethod  = auth.Method
	AuthFactory = auth.Factory
	Credentials = auth.Credentials
	Injector    = auth.Injector
)

// RegisterAuthProvider exposes custom auth provider registration for library users.
func RegisterAuthProvider(typ string, f AuthFactory) { auth.Register(typ, f) }

// Env is the template environment used for path, body and auth rendering.
type Env = env.Env

func NewEnv() *Env { return env.New() }

// Store
type (
	Store       = store.Store
	StoreConfig = store.Config
	Run         = store.Run
)

func OpenStore(cfg StoreConfig) (*Store, error) { return store.Open(cfg) }

// Logging
type (
	Logger   = common.Logger
	LogLevel = common.LogLevel
)

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }

func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }

func NewLoggerTo(w io.Writer, level LogLevel, asJSON bool) *Logger {
	return common.NewLoggerTo(w, level, asJSON)
}

func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking toggles masking of api keys and tokens in log output.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
