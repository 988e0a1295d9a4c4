package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verotasks/api/internal/task"
)

func TestNotifySignalSendsSecretAndPayload(t *testing.T) {
	var gotSecret string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Office-Secret")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "notified": true})
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "segredo", zerolog.Nop())

	id := uuid.New()
	notified, err := n.NotifySignal(context.Background(), task.SignalInput{
		TaskID:  id,
		State:   "pending",
		Comment: "travado no fornecedor",
		By:      task.SignalAuthor{UID: "u1", Email: "office@x.com"},
	})
	if err != nil {
		t.Fatalf("envio deveria passar: %v", err)
	}
	if !notified {
		t.Fatal("resposta notified=true deveria propagar")
	}
	if gotSecret != "segredo" {
		t.Fatalf("segredo não enviado: %q", gotSecret)
	}
	if gotPayload["taskId"] != id.String() || gotPayload["state"] != "pending" {
		t.Fatalf("payload errado: %v", gotPayload)
	}
}

func TestNotifySignalDedupedByBot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "notified": false})
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "s", zerolog.Nop())

	notified, err := n.NotifySignal(context.Background(), task.SignalInput{TaskID: uuid.New(), State: "open"})
	if err != nil {
		t.Fatalf("dedupe não é erro: %v", err)
	}
	if notified {
		t.Fatal("bot deduplicou; notified deveria ser falso")
	}
}

func TestNotifySignalNonJSONBodyReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>erro de proxy</html>"))
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "s", zerolog.Nop())

	_, err := n.NotifySignal(context.Background(), task.SignalInput{TaskID: uuid.New(), State: "open"})
	if err == nil || !strings.Contains(err.Error(), "bad_response") {
		t.Fatalf("corpo não-JSON deveria virar bad_response: %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("status deveria constar no erro: %v", err)
	}
}

func TestNotifySignalUpstreamErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "forbidden"})
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "s", zerolog.Nop())

	_, err := n.NotifySignal(context.Background(), task.SignalInput{TaskID: uuid.New(), State: "open"})
	if err == nil || !strings.Contains(err.Error(), "forbidden") {
		t.Fatalf("erro do bot deveria propagar: %v", err)
	}
}

func TestNotifySignalUnconfiguredNamesMissingKeys(t *testing.T) {
	var n *BotNotifier

	_, err := n.NotifySignal(context.Background(), task.SignalInput{TaskID: uuid.New(), State: "open"})
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("notificador ausente deveria falhar com missing_env: %v", err)
	}
	if !strings.Contains(err.Error(), "BOT_BASE_URL") || !strings.Contains(err.Error(), "OFFICE_API_SECRET") {
		t.Fatalf("erro deveria listar as chaves de ambiente reais: %v", err)
	}
}

func TestNotifySignalNamesOnlyTheAbsentKey(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		secret  string
		want    string
		exclude string
	}{
		{"sem URL", "", "segredo", "BOT_BASE_URL", "OFFICE_API_SECRET"},
		{"sem segredo", "http://bot", "", "OFFICE_API_SECRET", "BOT_BASE_URL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewBotNotifier(tc.baseURL, tc.secret, zerolog.Nop())
			if n.Configured() {
				t.Fatal("configuração incompleta não pode constar como pronta")
			}

			_, err := n.NotifySignal(context.Background(), task.SignalInput{TaskID: uuid.New(), State: "open"})
			if !errors.Is(err, ErrMissingEnv) {
				t.Fatalf("esperava missing_env: %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("erro deveria nomear %s: %v", tc.want, err)
			}
			if strings.Contains(err.Error(), tc.exclude) {
				t.Fatalf("erro não deveria listar chave presente (%s): %v", tc.exclude, err)
			}
		})
	}
}
