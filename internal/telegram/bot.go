// Package telegram serves the fridge over a Telegram bot webhook.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fridge-chef/internal/config"
	"fridge-chef/internal/metrics"
	"fridge-chef/internal/pantry"
	"fridge-chef/internal/session"
	"fridge-chef/internal/shopping"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of the Telegram API the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot maps Telegram chats onto fridge sessions.
type Bot struct {
	api          sender
	registry     *session.Registry
	metricsStore *metrics.Store
	cfg          *config.Config
	startedAt    time.Time
}

// NewBot initializes the Telegram API and sets the webhook. metricsStore may
// be nil, in which case /metrics only reports system health.
func NewBot(cfg *config.Config, registry *session.Registry, metricsStore *metrics.Store, startedAt time.Time) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, registry, metricsStore, startedAt), nil
}

func newBot(api sender, cfg *config.Config, registry *session.Registry, metricsStore *metrics.Store, startedAt time.Time) *Bot {
	return &Bot{
		api:          api,
		registry:     registry,
		metricsStore: metricsStore,
		cfg:          cfg,
		startedAt:    startedAt,
	}
}

// RegisterHandlers registers the webhook handler on r.
func (b *Bot) RegisterHandlers(r chi.Router) {
	r.Post("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	default:
		return
	}

	if from == nil || !b.isAllowed(from.ID) {
		if from != nil {
			log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
		}
		return
	}

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
		return
	}
	b.processMessage(update.Message)
}

// isAllowed reports whether the user may use the bot. An empty allow list
// admits everyone.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) session(chatID int64) *session.Session {
	return b.registry.GetOrCreate(fmt.Sprintf("tg:%d", chatID))
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess := b.session(chatID)

	switch msg.Command() {
	case "start", "fridge":
		sess.Navigate(session.ViewFridge)
		b.sendView(chatID, sess.Snapshot())
		return
	case "shopping":
		sess.Navigate(session.ViewShopping)
		b.sendView(chatID, sess.Snapshot())
		return
	case "recipes":
		sess.Navigate(session.ViewRecipes)
		sent, err := b.sendMarkdown(chatID, thinkingText, nil)
		if err != nil {
			log.Printf("Failed to send initial reply: %v", err)
			return
		}
		b.loadAndShowRecipes(sess, chatID, sent.MessageID)
		return
	case "metrics":
		b.handleMetricsRequest(msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.IsCommand() {
		return
	}

	switch sess.CurrentView() {
	case session.ViewFridge:
		sess.AddIngredient(text)
	case session.ViewShopping:
		sess.AddShoppingItem(text)
	default:
		b.sendMarkdown(chatID, "_Quay lại tủ lạnh để thêm nguyên liệu._", nil)
		return
	}
	b.sendView(chatID, sess.Snapshot())
}

type nextStep int

const (
	stepRender nextStep = iota
	stepLoadRecipes
	stepConfirmClear
)

// applyCallback performs the operation encoded in callback data. Data has the
// form "<scope>:<action>[:<arg>]" and must stay within Telegram's 64 bytes.
func applyCallback(sess *session.Session, data string) (notice string, next nextStep) {
	scope, rest, _ := strings.Cut(data, ":")
	action, arg, _ := strings.Cut(rest, ":")

	switch scope {
	case "nav":
		v, ok := session.ParseView(strings.ToUpper(action))
		if !ok {
			return "", stepRender
		}
		sess.Navigate(v)
		if v == session.ViewRecipes {
			return "", stepLoadRecipes
		}

	case "fr":
		switch action {
		case "add":
			if i, err := strconv.Atoi(arg); err == nil && i >= 0 && i < len(pantry.Suggestions) {
				sess.AddSuggestion(pantry.Suggestions[i])
			}
		case "rm":
			sess.RemoveIngredient(arg)
		case "find":
			if err := sess.FindRecipes(); err != nil {
				return "Tủ lạnh đang trống.", stepRender
			}
			return "", stepLoadRecipes
		}

	case "rc":
		if action == "back" {
			sess.Navigate(session.ViewFridge)
			return "", stepRender
		}
		i, err := strconv.Atoi(arg)
		if err != nil {
			return "Không tìm thấy công thức.", stepRender
		}
		id, ok := sess.RecipeIDAt(i)
		if !ok {
			return "Không tìm thấy công thức.", stepRender
		}
		switch action {
		case "t":
			if err := sess.ToggleRecipe(id); err != nil {
				return "Không tìm thấy công thức.", stepRender
			}
		case "m":
			added, err := sess.AddMissingToShopping(id)
			if err != nil {
				return "Không tìm thấy công thức.", stepRender
			}
			return fmt.Sprintf("Đã thêm %d món vào danh sách đi chợ.", len(added)), stepRender
		}

	case "sh":
		switch action {
		case "t":
			sess.ToggleShoppingItem(arg)
		case "rm":
			sess.RemoveShoppingItem(arg)
		case "clear":
			if sess.Snapshot().ShoppingTotal > 0 {
				return "", stepConfirmClear
			}
		case "yes":
			sess.ClearShopping(shopping.ConfirmFunc(func(string) bool { return true }))
		case "no":
			sess.ClearShopping(shopping.ConfirmFunc(func(string) bool { return false }))
		}
	}
	return "", stepRender
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	sess := b.session(chatID)

	notice, next := applyCallback(sess, query.Data)

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, notice))

	switch next {
	case stepLoadRecipes:
		b.loadAndShowRecipes(sess, chatID, messageID)
	case stepConfirmClear:
		text, keyboard := renderConfirmClear()
		b.editMarkdown(chatID, messageID, text, keyboard)
	default:
		text, keyboard := renderView(sess.Snapshot())
		b.editMarkdown(chatID, messageID, text, keyboard)
	}
}

// loadAndShowRecipes shows the thinking message, performs the recipe
// request of the mounted view and replaces the message with the result.
func (b *Bot) loadAndShowRecipes(sess *session.Session, chatID int64, messageID int) {
	if snap := sess.Snapshot(); snap.Recipes != nil && snap.Recipes.Loading() {
		b.editMarkdown(chatID, messageID, thinkingText, tgbotapi.NewInlineKeyboardMarkup(navRow()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.LLMTimeout)
	defer cancel()
	sess.LoadRecipes(ctx)

	text, keyboard := renderView(sess.Snapshot())
	b.editMarkdown(chatID, messageID, text, keyboard)
}

func (b *Bot) sendView(chatID int64, snap session.Snapshot) {
	text, keyboard := renderView(snap)
	if _, err := b.sendMarkdown(chatID, text, &keyboard); err != nil {
		log.Printf("Failed to send view to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	return b.api.Send(msg)
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.", nil)
		return
	}

	var usage []metrics.DailyUsage
	if b.metricsStore != nil {
		var err error
		usage, err = b.metricsStore.GetDailyUsage(7)
		if err != nil {
			log.Printf("Failed to fetch metrics: %v", err)
			b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.", nil)
			return
		}
	}

	health := metrics.GetSysHealth(b.cfg.MetricsDBPath, b.startedAt)
	b.sendMarkdown(msg.Chat.ID, formatMetricsReport(usage, health, b.registry.Len()), nil)
}
