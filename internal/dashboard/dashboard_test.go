package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/tossh23/architect-study-app/internal/model"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	srv := NewServer(&Config{Port: 0})
	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func dialTestClient(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", srv.Addr()), nil)
	if err != nil {
		t.Fatalf("failed to dial server: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	// Wait until the server has registered the client before
	// broadcasting, or the message races the registration.
	deadline := time.Now().Add(5 * time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("server never registered the client")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	return msg
}

func TestBroadcastReachesClient(t *testing.T) {
	srv := setupTestServer(t)
	conn := dialTestClient(t, srv)

	handler := NewHandler(srv, nil)
	handler.OnSyncComplete(nil, 120*time.Millisecond)

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeSyncComplete {
		t.Fatalf("message type = %s, want %s", msg.Type, MessageTypeSyncComplete)
	}
	var data SyncCompleteData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if !data.Succeeded {
		t.Error("sync reported as failed")
	}
}

func TestBankUpdateEvent(t *testing.T) {
	srv := setupTestServer(t)
	conn := dialTestClient(t, srv)

	NewHandler(srv, nil).OnBankRefreshed(125, "remote")

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeBankUpdate {
		t.Fatalf("message type = %s, want %s", msg.Type, MessageTypeBankUpdate)
	}
	var data BankUpdateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.QuestionCount != 125 || data.Source != "remote" {
		t.Errorf("bank update data = %+v", data)
	}
}

func TestAnswerEvent(t *testing.T) {
	srv := setupTestServer(t)
	conn := dialTestClient(t, srv)

	entry := &model.HistoryEntry{
		ID:             "1720000000000-abcd1234",
		QuestionID:     "2023-4-1",
		AnsweredAt:     time.Now().UTC(),
		SelectedAnswer: 2,
		IsCorrect:      true,
	}
	NewHandler(srv, nil).OnAnswerRecorded(entry)

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeAnswer {
		t.Fatalf("message type = %s, want %s", msg.Type, MessageTypeAnswer)
	}
	var data AnswerData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.QuestionID != entry.QuestionID || !data.IsCorrect {
		t.Errorf("answer data = %+v", data)
	}
}

func TestStatsEvent(t *testing.T) {
	srv := setupTestServer(t)
	conn := dialTestClient(t, srv)

	q := &model.Question{
		ID:             "2023-4-1",
		Year:           2023,
		Subject:        model.SubjectStructure,
		QuestionNumber: 1,
		QuestionText:   "placeholder",
		CorrectAnswer:  1,
	}
	history := []*model.HistoryEntry{
		{ID: "h1", QuestionID: q.ID, AnsweredAt: time.Now(), SelectedAnswer: 1, IsCorrect: true},
	}
	NewHandler(srv, nil).PublishStats([]*model.Question{q}, history)

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("message type = %s, want %s", msg.Type, MessageTypeStats)
	}
	var data StatsData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.Accuracy != 100 || data.TotalAnswered != 1 {
		t.Errorf("stats data = %+v", data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}
