package server

import (
	"fmt"

	"github.com/rbright/mockview/internal/report"
	"github.com/rbright/mockview/internal/session"
)

// View is the render model the page draws from.
type View struct {
	SessionID        string             `json:"session_id"`
	Role             string             `json:"role"`
	Type             string             `json:"type"`
	State            string             `json:"state"`
	Index            int                `json:"index"`
	Total            int                `json:"total"`
	Progress         float64            `json:"progress"`
	Question         string             `json:"question"`
	PendingVoiceText string             `json:"pending_voice_text"`
	Responses        []session.Response `json:"responses"`
	Average          string             `json:"average"`
	Notice           string             `json:"notice,omitempty"`
}

func newView(s session.Session, notice string) View {
	responses := s.Responses()
	if responses == nil {
		responses = []session.Response{}
	}

	question, err := s.CurrentQuestion()
	if err != nil && notice == "" && s.Total() == 0 {
		notice = "No questions available for this role and interview type."
	}

	return View{
		SessionID:        s.ID(),
		Role:             string(s.Role()),
		Type:             string(s.Type()),
		State:            string(s.State()),
		Index:            s.Index(),
		Total:            s.Total(),
		Progress:         s.Progress(),
		Question:         question,
		PendingVoiceText: s.PendingVoiceText(),
		Responses:        responses,
		Average:          report.FormatAverage(responses),
		Notice:           notice,
	}
}

func answerNotice(resp session.Response) string {
	return fmt.Sprintf("Feedback: %s Score: %d/10", resp.Feedback, resp.Score)
}

const completedNotice = "Interview Completed!"
