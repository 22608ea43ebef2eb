package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"auraleen/internal/models"
)

// TelegramService шлёт уведомления о новых заказах в админский чат.
// Необязателен: без токена/чата возвращаем nil и весь поток работает без него.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, chatID int64) *TelegramService {
	if botToken == "" || chatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v", err)
		return nil
	}
	return &TelegramService{bot: bot, chatID: chatID}
}

// NotifyNewOrder — fire-and-forget: ошибка доставки только логируется.
func (t *TelegramService) NotifyNewOrder(order *models.Order, code string) {
	if t == nil || t.bot == nil {
		return
	}
	text := fmt.Sprintf(
		"New COD order %s\nCustomer: %s (%s)\nCity: %s, %s\nItems: %d\nSubtotal: %.2f",
		code, order.CustomerName, order.Phone, order.City, order.Area, len(order.Items), order.Subtotal,
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] order=%s: %v", code, err)
		return
	}
	log.Printf("[tg][send] order=%s chatID=%d", code, t.chatID)
}
