package service

import (
	"context"
	"fmt"
	"os"

	"github.com/glunkad/invoice-service/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramService sends replies through the Bot API.
type TelegramService struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewTelegramService wraps an authorized bot.
func NewTelegramService(bot *tgbotapi.BotAPI, log *zap.Logger) *TelegramService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramService{
		bot: bot,
		log: log.With(zap.String("component", "telegram")),
	}
}

// SendMessage sends text formatted as Telegram Markdown.
func (s *TelegramService) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Debug("message sent", zap.Int64("chat_id", chatID), zap.Int("text_length", len(text)))
	return nil
}

// SendDocument uploads the file at doc.Path under doc.FileName.
func (s *TelegramService) SendDocument(ctx context.Context, chatID int64, doc domain.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   doc.FileName,
		Reader: file,
	})
	msg.Caption = doc.Caption

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}

	s.log.Debug("document sent", zap.Int64("chat_id", chatID), zap.String("file_name", doc.FileName))
	return nil
}
