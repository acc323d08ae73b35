package session

import (
	"testing"

	"github.com/rbright/mockview/internal/evaluator"
	"github.com/rbright/mockview/internal/fsm"
	"github.com/rbright/mockview/internal/questionbank"
	"github.com/stretchr/testify/require"
)

const sixteenWords = "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen"

func testBank(t *testing.T) *questionbank.Bank {
	t.Helper()
	bank, err := questionbank.Parse([]byte(`
interview_types: [Technical, Behavioral]
roles:
  - name: Engineer
    questions:
      Technical: [Q1, Q2]
      Behavioral: [B1]
  - name: Empty
`))
	require.NoError(t, err)
	return bank
}

func newSession(t *testing.T, role questionbank.Role, kind questionbank.InterviewType) Session {
	t.Helper()
	s, err := New("abcd1234", testBank(t), role, kind)
	require.NoError(t, err)
	return s
}

func TestNewIDShape(t *testing.T) {
	seen := map[string]struct{}{}
	for range 50 {
		id := NewID()
		require.True(t, ValidID(id), id)
		seen[id] = struct{}{}
	}
	require.Greater(t, len(seen), 45)

	require.False(t, ValidID("ABCD1234"))
	require.False(t, ValidID("abc"))
	require.False(t, ValidID("abcd12345"))
}

func TestSelectComboStartsInProgress(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	require.Equal(t, "abcd1234", s.ID())
	require.Equal(t, fsm.StateInProgress, s.State())
	require.Equal(t, 0, s.Index())
	require.Equal(t, 2, s.Total())
	require.Empty(t, s.Responses())
	require.Empty(t, s.PendingVoiceText())
	require.Zero(t, s.Progress())

	question, err := s.CurrentQuestion()
	require.NoError(t, err)
	require.Equal(t, "Q1", question)
}

func TestSelectComboEmptyListIsCompleted(t *testing.T) {
	s := newSession(t, "Empty", "Technical")

	require.Equal(t, fsm.StateCompleted, s.State())
	require.True(t, s.Completed())
	require.Zero(t, s.Total())
	require.Zero(t, s.Progress())

	_, err := s.CurrentQuestion()
	require.ErrorIs(t, err, ErrEmptyQuestionList)

	_, _, err = s.SubmitAnswer("anything")
	require.ErrorIs(t, err, ErrCompleted)
}

func TestSelectComboResetsEverything(t *testing.T) {
	bank := testBank(t)
	s := newSession(t, "Engineer", "Technical")

	s, _, err := s.SubmitAnswer("first answer")
	require.NoError(t, err)
	s.pendingVoiceText = "draft"

	s, err = s.SelectCombo(bank, "Engineer", "Behavioral")
	require.NoError(t, err)
	require.Equal(t, questionbank.InterviewType("Behavioral"), s.Type())
	require.Equal(t, 0, s.Index())
	require.Empty(t, s.Responses())
	require.Empty(t, s.PendingVoiceText())
	require.Equal(t, fsm.StateInProgress, s.State())
	require.Equal(t, "abcd1234", s.ID())
}

func TestSelectComboRejectsUnknownNames(t *testing.T) {
	bank := testBank(t)
	s := newSession(t, "Engineer", "Technical")

	same, err := s.SelectCombo(bank, "Pilot", "Technical")
	require.ErrorIs(t, err, questionbank.ErrUnknownRole)
	require.Equal(t, s, same)

	same, err = s.SelectCombo(bank, "Engineer", "Trivia")
	require.ErrorIs(t, err, questionbank.ErrUnknownType)
	require.Equal(t, s, same)
}

func TestSubmitAnswerWorkedExample(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	s, resp, err := s.SubmitAnswer(sixteenWords)
	require.NoError(t, err)
	require.Equal(t, Response{Question: "Q1", Answer: sixteenWords, Score: 8, Feedback: evaluator.FeedbackGoodDepth}, resp)
	require.Equal(t, fsm.StateInProgress, s.State())
	require.Equal(t, 0.5, s.Progress())

	s, resp, err = s.SubmitAnswer("short")
	require.NoError(t, err)
	require.Equal(t, 5, resp.Score)
	require.Equal(t, evaluator.FeedbackTooShort, resp.Feedback)

	require.Equal(t, fsm.StateCompleted, s.State())
	require.Equal(t, 2, s.Index())
	require.Len(t, s.Responses(), 2)
	require.Equal(t, 1.0, s.Progress())

	total := 0
	for _, r := range s.Responses() {
		total += r.Score
	}
	require.Equal(t, 6.5, float64(total)/float64(len(s.Responses())))

	_, err = s.CurrentQuestion()
	require.ErrorIs(t, err, ErrCompleted)
}

func TestSubmitAnswerRejectsBlankText(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")
	s.pendingVoiceText = "draft"

	for _, text := range []string{"", "   ", "\n\t "} {
		next, resp, err := s.SubmitAnswer(text)
		require.ErrorIs(t, err, ErrEmptyAnswer)
		require.Equal(t, Response{}, resp)
		require.Equal(t, s, next)
	}
}

func TestSubmitAnswerClearsPendingVoiceText(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")
	s.pendingVoiceText = "from the mic"

	s, _, err := s.SubmitAnswer("from the mic")
	require.NoError(t, err)
	require.Empty(t, s.PendingVoiceText())
}

func TestCompletedStaysCompletedUntilSelect(t *testing.T) {
	bank := testBank(t)
	s := newSession(t, "Engineer", "Behavioral")

	s, _, err := s.SubmitAnswer("my team shipped it")
	require.NoError(t, err)
	require.True(t, s.Completed())

	for range 3 {
		next, _, err := s.SubmitAnswer("more")
		require.ErrorIs(t, err, ErrCompleted)
		require.True(t, next.Completed())
	}

	s, err = s.SelectCombo(bank, "Engineer", "Behavioral")
	require.NoError(t, err)
	require.False(t, s.Completed())
}

func TestRetryLastIsExactInverse(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	s, _, err := s.SubmitAnswer("first")
	require.NoError(t, err)
	before := s

	after, _, err := s.SubmitAnswer("second")
	require.NoError(t, err)
	require.True(t, after.Completed())

	undone, err := after.RetryLast()
	require.NoError(t, err)
	require.Equal(t, before, undone)
	require.Equal(t, fsm.StateInProgress, undone.State())

	undone, err = undone.RetryLast()
	require.NoError(t, err)
	require.Equal(t, 0, undone.Index())
	require.Nil(t, undone.Responses())
}

func TestRetryLastWithoutAnswers(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	next, err := s.RetryLast()
	require.ErrorIs(t, err, ErrNothingToRetry)
	require.Equal(t, s, next)
}

func TestEarlierValuesKeepTheirHistory(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	first, _, err := s.SubmitAnswer("alpha")
	require.NoError(t, err)
	rewound, err := first.RetryLast()
	require.NoError(t, err)
	branched, _, err := rewound.SubmitAnswer("beta")
	require.NoError(t, err)

	require.Equal(t, "alpha", first.Responses()[0].Answer)
	require.Equal(t, "beta", branched.Responses()[0].Answer)
}

func TestResponsesReturnsCopy(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")
	s, _, err := s.SubmitAnswer("answer")
	require.NoError(t, err)

	out := s.Responses()
	out[0].Score = 0
	require.NotZero(t, s.Responses()[0].Score)
}
