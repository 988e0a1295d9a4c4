package notify

import (
	"context"
)

// TelegramAccount é o retrato do chat devolvido pelo bot quando o
// token de vínculo é consumido.
type TelegramAccount struct {
	ChatID    string `json:"chatId"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
}

type linkPayload struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

type linkResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TelegramAccount
}

func (r *linkResponse) status() (bool, string) { return r.OK, r.Error }

type unlinkPayload struct {
	ChatID string `json:"chatId"`
	UID    string `json:"uid"`
}

type unlinkResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (r *unlinkResponse) status() (bool, string) { return r.OK, r.Error }

// LinkTelegram consome no bot o token que o colaborador recebeu no
// chat e devolve os dados da conta vinculada. O token é de uso único;
// quem o valida é o próprio bot.
func (n *BotNotifier) LinkTelegram(ctx context.Context, token, uid string) (*TelegramAccount, error) {
	var parsed linkResponse
	if err := n.post(ctx, "/office/telegram/link", linkPayload{Token: token, UID: uid}, &parsed); err != nil {
		return nil, err
	}

	n.logger.Debug().
		Str("uid", uid).
		Str("chat_id", parsed.ChatID).
		Msg("telegram vinculado")

	return &parsed.TelegramAccount, nil
}

// UnlinkTelegram avisa o bot que o chat deixou de pertencer ao
// colaborador, para que pare de receber avisos.
func (n *BotNotifier) UnlinkTelegram(ctx context.Context, chatID, uid string) error {
	var parsed unlinkResponse
	return n.post(ctx, "/office/telegram/unlink", unlinkPayload{ChatID: chatID, UID: uid}, &parsed)
}
