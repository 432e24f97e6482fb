// server.go
//
// HTTP/JSON execution bridge. Each request gets a fresh interpreter built
// from a shared prototype, so requests never see each other's stacks. The
// prototype's module registries are shared read-only.
package remote

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/forthic-lang/forthic"
)

// Server exposes a Forthic interpreter to remote runtimes.
type Server struct {
	proto   *forthic.Interpreter
	runtime map[string]bool
	router  *gin.Engine
	started time.Time
}

// NewServer wraps proto. The prototype is never executed directly; every
// request runs on a duplicate.
func NewServer(proto *forthic.Interpreter) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Logger))

	s := &Server{
		proto:   proto,
		runtime: map[string]bool{},
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// RegisterRuntimeModule installs a runtime-specific module on the
// prototype. Its exported words resolve unprefixed, beneath application
// definitions, and ListModules reports it as runtime_specific.
func (s *Server) RegisterRuntimeModule(m *forthic.Module) error {
	s.proto.RegisterModule(m)
	s.runtime[m.Name] = true
	return s.proto.UseModule(m.Name)
}

// Router returns the gin engine, for embedding and for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Serve blocks on addr.
func (s *Server) Serve(addr string) error {
	log.Info().Str("addr", addr).Msg("execution bridge listening")
	return s.router.Run(addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"runtime": Runtime,
			"uptime":  time.Since(s.started).String(),
		})
	})

	rpc := s.router.Group("/rpc")
	rpc.POST("/execute-word", s.handleExecuteWord)
	rpc.POST("/execute-sequence", s.handleExecuteSequence)
	rpc.GET("/modules", s.handleListModules)
	rpc.GET("/modules/:name", s.handleModuleInfo)
}

func (s *Server) handleExecuteWord(c *gin.Context) {
	var req ExecuteWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := s.execute(req.Stack, []string{req.Word})
	c.JSON(statusFor(resp), resp)
}

func (s *Server) handleExecuteSequence(c *gin.Context) {
	var req ExecuteSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := s.execute(req.Stack, req.Words)
	c.JSON(statusFor(resp), resp)
}

// execute runs words in order on a fresh interpreter seeded with the
// request stack. The first failing word stops the run.
func (s *Server) execute(seed []WireValue, words []string) ExecuteResponse {
	values, err := DecodeStack(seed)
	if err != nil {
		return ExecuteResponse{Error: &ErrorInfo{
			Message:   err.Error(),
			Runtime:   Runtime,
			ErrorType: "WireError",
			Context:   map[string]string{"stage": "decode-request-stack"},
		}}
	}

	ip := s.proto.DupInterpreter()
	for _, v := range values {
		ip.Push(v)
	}

	for _, word := range words {
		if err := ip.Run(word); err != nil {
			log.Warn().Str("word", word).Err(err).Msg("remote execution failed")
			return ExecuteResponse{Error: NewErrorInfo(err, map[string]string{"word": word})}
		}
	}

	out, err := EncodeStack(ip.Stack())
	if err != nil {
		return ExecuteResponse{Error: &ErrorInfo{
			Message:   err.Error(),
			Runtime:   Runtime,
			ErrorType: "WireError",
			Context:   map[string]string{"stage": "encode-result-stack"},
		}}
	}
	if out == nil {
		out = []WireValue{}
	}
	return ExecuteResponse{Stack: out}
}

func (s *Server) handleListModules(c *gin.Context) {
	modules := s.proto.RegisteredModules()
	out := make([]ModuleSummary, 0, len(modules))
	for _, m := range modules {
		out = append(out, s.summary(m))
	}
	c.JSON(http.StatusOK, ListModulesResponse{Modules: out})
}

func (s *Server) handleModuleInfo(c *gin.Context) {
	name := c.Param("name")
	m, ok := s.proto.FindRegisteredModule(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "module not found: " + name})
		return
	}

	exported := m.Exportable()
	words := make([]WordInfo, 0, len(exported))
	for _, wn := range exported {
		w, ok := m.FindExportedWord(wn)
		if !ok {
			continue
		}
		words = append(words, wordInfo(w))
	}
	c.JSON(http.StatusOK, ModuleInfoResponse{Module: s.summary(m), Words: words})
}

func (s *Server) summary(m *forthic.Module) ModuleSummary {
	return ModuleSummary{
		Name:            m.Name,
		WordCount:       m.WordCount(),
		RuntimeSpecific: s.runtime[m.Name],
		Description:     m.Description,
	}
}

func wordInfo(w forthic.Word) WordInfo {
	info := WordInfo{Name: w.Name()}
	switch word := w.(type) {
	case *forthic.NativeWord:
		info.StackEffect = word.StackEffect()
		info.Description = word.Doc()
	case *forthic.DirectWord:
		info.Description = word.Doc()
	}
	return info
}

// statusFor maps an execution outcome to an HTTP status. Engine failures
// are 422: the request was well-formed, the program was not.
func statusFor(resp ExecuteResponse) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	if resp.Error.ErrorType == "WireError" {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// RequestLogger logs one line per request at a level keyed to the status.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	}
}
