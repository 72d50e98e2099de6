package modules

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/orangedot/fleetctl/internal/fleeterr"
)

// LogLevel mirrors the ABI's level argument to HostAPI.log.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarn
	LevelError
	LevelDebug
)

// Artifact is the Go-side stand-in for a loaded action-module: the ABI
// edge (resolving symbols in a shared object, marshalling the C-style
// function pointers) is out of scope for the core — the core only
// depends on this interface, which a real loader would produce after
// dlopen/dlsym.
type Artifact interface {
	// Start is called once at load time with a HostAPI the artifact can
	// use to register callbacks and log. Returns 0 on success.
	Start(api HostAPI, moduleID string) int
}

// Stopper is implemented by artifacts that need a shutdown hook.
type Stopper interface {
	Stop()
}

// HostAPI is the vtable an artifact receives at Start, corresponding to
// the ABI's register_callback/unregister_callback/log function pointers.
// No C-style function pointer crosses this interface: callbacks are Go
// functions taking a string context, and Host's implementation hands
// them to Registry unchanged.
type HostAPI interface {
	RegisterCallback(moduleID string, cb Callback)
	UnregisterCallback(moduleID string)
	Log(level LogLevel, msg string)
}

type hostAPI struct {
	host *Host
}

func (h hostAPI) RegisterCallback(moduleID string, cb Callback) {
	h.host.registry.Register(moduleID, cb)
}

func (h hostAPI) UnregisterCallback(moduleID string) {
	h.host.registry.Unregister(moduleID)
}

func (h hostAPI) Log(level LogLevel, msg string) {
	h.host.logArtifact(level, msg)
}

type loadedArtifact struct {
	moduleID string
	instance string // uuid token identifying this load
	artifact Artifact
}

// Host loads action-module artifacts, bridges them to a Registry, and
// owns their lifecycle: load order, hot-reload (replace-as-unload-then-
// load under one critical section), and an enabled set independent of
// load state.
type Host struct {
	mu       sync.Mutex
	registry *Registry
	loaded   []loadedArtifact // insertion order; unload walks it in reverse
	enabled  map[string]bool
	diag     *slog.Logger
}

// NewHost returns a Host bridging artifacts into reg. diag receives
// operational log lines; nil disables them.
func NewHost(reg *Registry, diag *slog.Logger) *Host {
	if diag == nil {
		diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Host{
		registry: reg,
		enabled:  make(map[string]bool),
		diag:     diag,
	}
}

func (h *Host) logArtifact(level LogLevel, msg string) {
	switch level {
	case LevelWarn:
		h.diag.Warn(msg)
	case LevelError:
		h.diag.Error(msg)
	case LevelDebug:
		h.diag.Debug(msg)
	default:
		h.diag.Info(msg)
	}
}

func (h *Host) indexOfLocked(moduleID string) int {
	for i, la := range h.loaded {
		if la.moduleID == moduleID {
			return i
		}
	}
	return -1
}

// Load resolves Start (and optional Stop) on artifact and registers it
// under moduleID. If moduleID is already loaded, it is unloaded first
// under the same critical section ("hot reload"), so the registry is
// never left mapping moduleID to a released artifact. Fails LoadFailure
// if Start returns non-zero, after calling Stop (if implemented) and
// releasing the handle.
func (h *Host) Load(moduleID string, artifact Artifact) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if idx := h.indexOfLocked(moduleID); idx >= 0 {
		h.unloadLocked(idx)
	}

	rc := artifact.Start(hostAPI{host: h}, moduleID)
	if rc != 0 {
		if s, ok := artifact.(Stopper); ok {
			s.Stop()
		}
		return fleeterr.New(fleeterr.LoadFailure, "start returned non-zero")
	}

	h.loaded = append(h.loaded, loadedArtifact{
		moduleID: moduleID,
		instance: uuid.NewString(),
		artifact: artifact,
	})
	return nil
}

// Unload releases the artifact loaded under moduleID: calls Stop (if
// implemented) then removes it from load order and the registry. Fails
// NotFound if moduleID isn't loaded.
func (h *Host) Unload(moduleID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := h.indexOfLocked(moduleID)
	if idx < 0 {
		return fleeterr.New(fleeterr.NotFound, "module not loaded: "+moduleID)
	}
	h.unloadLocked(idx)
	return nil
}

func (h *Host) unloadLocked(idx int) {
	la := h.loaded[idx]
	if s, ok := la.artifact.(Stopper); ok {
		s.Stop()
	}
	h.registry.Unregister(la.moduleID)
	h.loaded = append(h.loaded[:idx], h.loaded[idx+1:]...)
}

// UnloadAll releases every loaded artifact in reverse insertion order.
func (h *Host) UnloadAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.loaded) - 1; i >= 0; i-- {
		h.unloadLocked(i)
	}
}

// Loaded returns the ids of every currently-loaded artifact, in
// insertion order.
func (h *Host) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, len(h.loaded))
	for i, la := range h.loaded {
		ids[i] = la.moduleID
	}
	return ids
}

// SetEnabled controls whether invoke requests from the Ingress are
// honored for moduleID; loaded-but-not-enabled modules remain dormant.
func (h *Host) SetEnabled(moduleID string, enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled[moduleID] = enabled
}

// IsEnabled reports moduleID's administrative enablement. Unknown ids
// are disabled by default.
func (h *Host) IsEnabled(moduleID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enabled[moduleID]
}
