// Package notify fala com o serviço do bot: encaminha sinais do
// escritório ao supervisor e administra o vínculo de Telegram dos
// colaboradores.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verotasks/api/internal/task"
)

// ErrMissingEnv indica notificador sem configuração. A mensagem lista
// as chaves ausentes para o operador.
var ErrMissingEnv = errors.New("missing_env")

// BotNotifier envia chamadas HTTP ao bot, autenticando com o segredo
// compartilhado do escritório.
type BotNotifier struct {
	baseURL string
	secret  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewBotNotifier cria o cliente do bot. Configuração incompleta não
// quebra o boot: cada chamada falha com erro nomeando as chaves que
// faltam.
func NewBotNotifier(baseURL, secret string, logger zerolog.Logger) *BotNotifier {
	return &BotNotifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secret:  strings.TrimSpace(secret),
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Configured indica se URL e segredo estão presentes.
func (n *BotNotifier) Configured() bool {
	return n != nil && len(n.missingKeys()) == 0
}

func (n *BotNotifier) missingKeys() []string {
	if n == nil {
		return []string{"BOT_BASE_URL", "OFFICE_API_SECRET"}
	}
	var missing []string
	if n.baseURL == "" {
		missing = append(missing, "BOT_BASE_URL")
	}
	if n.secret == "" {
		missing = append(missing, "OFFICE_API_SECRET")
	}
	return missing
}

type signalPayload struct {
	TaskID      string `json:"taskId"`
	State       string `json:"state"`
	Comment     string `json:"comment,omitempty"`
	By          by     `json:"by"`
	ForceNotify bool   `json:"forceNotify,omitempty"`
}

type by struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

type signalResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Notified bool   `json:"notified"`
}

func (r *signalResponse) status() (bool, string) { return r.OK, r.Error }

// NotifySignal encaminha o sinal e devolve se o supervisor foi de fato
// notificado nesta chamada (o bot pode deduplicar).
func (n *BotNotifier) NotifySignal(ctx context.Context, input task.SignalInput) (bool, error) {
	var parsed signalResponse
	err := n.post(ctx, "/office/signal", signalPayload{
		TaskID:      input.TaskID.String(),
		State:       input.State,
		Comment:     input.Comment,
		By:          by{UID: input.By.UID, Email: input.By.Email},
		ForceNotify: input.ForceNotify,
	}, &parsed)
	if err != nil {
		return false, err
	}

	n.logger.Debug().
		Str("task_id", input.TaskID.String()).
		Bool("notified", parsed.Notified).
		Msg("sinal encaminhado ao bot")

	return parsed.Notified, nil
}

// botResult é o envelope mínimo que toda resposta do bot carrega.
type botResult interface {
	status() (ok bool, msg string)
}

// post envia payload JSON autenticado e decodifica a resposta em out,
// aplicando o tratamento padrão de erro do bot.
func (n *BotNotifier) post(ctx context.Context, path string, payload any, out botResult) error {
	if keys := n.missingKeys(); len(keys) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(keys, ", "))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Office-Secret", n.secret)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// Corpo não-JSON normalmente é página de erro de proxy; o status
		// diz mais que o corpo.
		return fmt.Errorf("bad_response: status=%d", resp.StatusCode)
	}

	ok, msg := out.status()
	if resp.StatusCode >= 300 || !ok {
		if msg == "" {
			msg = "bad_response"
		}
		return fmt.Errorf("%s: status=%d", msg, resp.StatusCode)
	}

	return nil
}
