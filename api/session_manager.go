package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"rv32iemu/vm"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

const defaultMemorySize = 1 << 20 // 1 MiB

// Session is one running emulator instance: a CPU plus the CSR indices
// included in every snapshot. CreateSession leaves WatchedCSRs empty.
type Session struct {
	ID          string
	CPU         *vm.CPU
	WatchedCSRs []int
	CreatedAt   time.Time
}

// SessionManager manages multiple concurrent emulator sessions, the way the
// teacher's SessionManager lets one api.Server drive several independent VMs.
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

func (sm *SessionManager) CreateSession(req SessionCreateRequest) (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	memSize := req.MemorySize
	if memSize == 0 {
		memSize = defaultMemorySize
	}

	mem := vm.NewMemory(memSize)
	if len(req.Program) > 0 {
		if err := mem.LoadBytes(req.LoadAddr, req.Program); err != nil {
			return nil, fmt.Errorf("failed to load program: %w", err)
		}
	}

	regs := vm.NewRegisters()
	regs.SetPC(req.EntryPoint)

	cpu := vm.NewCPU(mem, regs, vm.NewDecoder())

	session := &Session{
		ID:        sessionID,
		CPU:       cpu,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}
	sm.sessions[sessionID] = session
	return session, nil
}

func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(sm.sessions, sessionID)
	return nil
}

func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
