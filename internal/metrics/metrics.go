// Package metrics keeps in-process interview counters.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	SessionsStarted     int64     `json:"sessions_started"`
	CombosSelected      int64     `json:"combos_selected"`
	AnswersSubmitted    int64     `json:"answers_submitted"`
	AnswersRejected     int64     `json:"answers_rejected"`
	Retries             int64     `json:"retries"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	VoiceCapturesOK     int64     `json:"voice_captures_ok"`
	VoiceCapturesFailed int64     `json:"voice_captures_failed"`
	PlaybackRequests    int64     `json:"playback_requests"`
	ReportsExported     int64     `json:"reports_exported"`
	LastUpdate          time.Time `json:"last_update"`
}

// Metrics is safe for concurrent use. A nil *Metrics discards updates.
type Metrics struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

func NewMetrics() *Metrics {
	m := &Metrics{now: time.Now}
	m.snap.LastUpdate = m.now()
	return m
}

func (m *Metrics) bump(counter func(*Snapshot)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counter(&m.snap)
	m.snap.LastUpdate = m.now()
}

func (m *Metrics) IncrementSessionsStarted() {
	m.bump(func(s *Snapshot) { s.SessionsStarted++ })
}

func (m *Metrics) IncrementCombosSelected() {
	m.bump(func(s *Snapshot) { s.CombosSelected++ })
}

// IncrementAnswer counts a submission; rejected ones were empty or out of turn.
func (m *Metrics) IncrementAnswer(accepted bool) {
	m.bump(func(s *Snapshot) {
		if accepted {
			s.AnswersSubmitted++
		} else {
			s.AnswersRejected++
		}
	})
}

func (m *Metrics) IncrementRetries() {
	m.bump(func(s *Snapshot) { s.Retries++ })
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.bump(func(s *Snapshot) { s.InterviewsCompleted++ })
}

func (m *Metrics) IncrementVoiceCapture(success bool) {
	m.bump(func(s *Snapshot) {
		if success {
			s.VoiceCapturesOK++
		} else {
			s.VoiceCapturesFailed++
		}
	})
}

func (m *Metrics) IncrementPlaybackRequests() {
	m.bump(func(s *Snapshot) { s.PlaybackRequests++ })
}

func (m *Metrics) IncrementReportsExported() {
	m.bump(func(s *Snapshot) { s.ReportsExported++ })
}

func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
