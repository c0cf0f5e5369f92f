package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/tossh23/architect-study-app/internal/model"
	"github.com/tossh23/architect-study-app/internal/stats"
)

// Handler formats study events as dashboard messages. It bridges the
// sync engine and study loop to the WebSocket server.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates an event handler connected to a dashboard server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

func (h *Handler) send(typ MessageType, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{Type: typ, Timestamp: time.Now(), Data: raw})
}

// OnSyncComplete reports a finished reconciliation pass.
func (h *Handler) OnSyncComplete(err error, duration time.Duration) {
	data := SyncCompleteData{Succeeded: err == nil, Duration: duration}
	if err != nil {
		data.Error = err.Error()
	}
	h.send(MessageTypeSyncComplete, data)
}

// OnBankRefreshed reports a question-bank replacement. Admin edits made
// from other processes surface here too, on the reconciliation pass that
// picks them up.
func (h *Handler) OnBankRefreshed(count int, source string) {
	h.send(MessageTypeBankUpdate, BankUpdateData{
		QuestionCount: count,
		Source:        source,
	})
}

// OnAnswerRecorded reports one graded answer.
func (h *Handler) OnAnswerRecorded(entry *model.HistoryEntry) {
	h.send(MessageTypeAnswer, AnswerData{
		QuestionID: entry.QuestionID,
		IsCorrect:  entry.IsCorrect,
		AnsweredAt: entry.AnsweredAt,
	})
}

// PublishStats derives current accuracy aggregates and broadcasts them.
func (h *Handler) PublishStats(questions []*model.Question, history []*model.HistoryEntry) {
	overall := stats.Overall(questions, history)
	bySubject := stats.BySubject(questions, history)

	data := StatsData{
		TotalQuestions: overall.TotalQuestions,
		TotalAnswered:  overall.TotalAnswered,
		CorrectCount:   overall.CorrectCount,
		Accuracy:       overall.Accuracy,
		BySubject:      make(map[string]int, len(bySubject)),
	}
	for subject, summary := range bySubject {
		data.BySubject[subject.String()] = summary.Accuracy
	}
	h.send(MessageTypeStats, data)
}
