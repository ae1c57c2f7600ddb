// Package telegram exposes the generation features as a Telegram bot behind
// a webhook.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"platewise/internal/alternatives"
	"platewise/internal/clipper"
	"platewise/internal/config"
	"platewise/internal/credits"
	"platewise/internal/grocery"
	"platewise/internal/mealplan"
	"platewise/internal/payments"
	"platewise/internal/recipes"
	"platewise/internal/suggest"
	"platewise/internal/usage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wires the Telegram API to the generation services.
type Bot struct {
	api    *tgbotapi.BotAPI
	cfg    *config.Config
	logger *zap.Logger

	plans        *mealplan.Service
	recipeFinder *recipes.Service
	alternatives *alternatives.Service
	grocery      *grocery.Service
	suggest      *suggest.Service
	clipper      *clipper.Clipper
	payments     *payments.Service
	credits      *credits.Store
	usage        *usage.Store
}

// NewBot initializes the Telegram bot and registers the webhook.
func NewBot(
	cfg *config.Config,
	plans *mealplan.Service,
	recipeFinder *recipes.Service,
	altService *alternatives.Service,
	groceryService *grocery.Service,
	suggestService *suggest.Service,
	recipeClipper *clipper.Clipper,
	paymentService *payments.Service,
	creditStore *credits.Store,
	usageStore *usage.Store,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logger = logger.Named("telegram")
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return &Bot{
		api:          api,
		cfg:          cfg,
		logger:       logger,
		plans:        plans,
		recipeFinder: recipeFinder,
		alternatives: altService,
		grocery:      groceryService,
		suggest:      suggestService,
		clipper:      recipeClipper,
		payments:     paymentService,
		credits:      creditStore,
		usage:        usageStore,
	}, nil
}

// RegisterHandlers registers the webhook and health endpoints on the mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("failed to parse update", zap.Error(err))
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName))
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	// A bare URL means clipping.
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg.Chat.ID, userID, text)
		return
	}

	command, args := splitCommand(text)
	switch command {
	case "/start":
		b.handleStart(ctx, msg.Chat.ID, userID)
	case "/plan":
		b.handlePlan(ctx, msg.Chat.ID, userID, args)
	case "/recipes":
		b.handleRecipes(ctx, msg.Chat.ID, userID, args)
	case "/swap":
		b.handleSwap(ctx, msg.Chat.ID, userID, args)
	case "/grocery":
		b.handleGrocery(ctx, msg.Chat.ID, userID, args)
	case "/suggest":
		b.handleSuggest(ctx, msg.Chat.ID, userID, args)
	case "/credits":
		b.handleCredits(ctx, msg.Chat.ID, userID)
	case "/buy":
		b.handleBuy(ctx, msg.Chat.ID, userID, args)
	case "/redeem":
		b.handleRedeem(ctx, msg.Chat.ID, args)
	case "/usage":
		b.handleUsage(ctx, msg.Chat.ID, msg.From.ID)
	default:
		b.send(msg.Chat.ID, helpText)
	}
}

// splitCommand separates the leading /command from its argument string.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	parts := strings.SplitN(text, " ", 2)
	command := parts[0]
	// Commands may arrive as /plan@BotName in groups.
	if at := strings.Index(command, "@"); at != -1 {
		command = command[:at]
	}
	args := ""
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args
}

const helpText = `What I can do:
/plan <days> [calories] - generate a meal plan
/recipes <ingredient, ingredient, ...> - find recipes
/swap <dish> - healthier alternatives
/grocery <meal; meal; ...> - build a shopping list
/suggest [breakfast|lunch|dinner|snack] - one meal idea
/credits - show your balance
/buy [pack] - buy more credits
/redeem <checkout> - redeem a finished purchase
Send a recipe URL to save it.`

func (b *Bot) handleStart(ctx context.Context, chatID int64, userID string) {
	if err := b.credits.GrantOnce(ctx, userID, b.cfg.SignupCredits, "signup"); err != nil {
		b.logger.Error("failed to grant signup credits", zap.String("user_id", userID), zap.Error(err))
		b.send(chatID, "Something went wrong setting up your account, please try again.")
		return
	}
	balance, _ := b.credits.Balance(ctx, userID)
	b.send(chatID, fmt.Sprintf("Welcome to PlateWise! You have %d credits.\n\n%s", balance, helpText))
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, userID, args string) {
	req, err := parsePlanArgs(args)
	if err != nil {
		b.send(chatID, "Usage: /plan <days> [calories], e.g. /plan 3 2000")
		return
	}

	statusID := b.send(chatID, "Cooking up your plan...")
	plan, _, err := b.plans.Generate(ctx, userID, req)
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	if _, err := b.plans.Save(ctx, userID, plan); err != nil {
		b.logger.Warn("failed to save plan", zap.String("user_id", userID), zap.Error(err))
	}
	b.edit(chatID, statusID, formatPlan(plan))
}

func (b *Bot) handleRecipes(ctx context.Context, chatID int64, userID, args string) {
	if args == "" {
		b.send(chatID, "Usage: /recipes <ingredient, ingredient, ...>")
		return
	}
	req := recipes.Request{Ingredients: splitList(args, ",")}

	statusID := b.send(chatID, "Searching for recipes...")
	found, _, err := b.recipeFinder.Find(ctx, userID, req)
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	b.edit(chatID, statusID, formatRecipes(found))
}

func (b *Bot) handleSwap(ctx context.Context, chatID int64, userID, args string) {
	if args == "" {
		b.send(chatID, "Usage: /swap <dish>")
		return
	}

	statusID := b.send(chatID, "Looking for healthier takes...")
	alts, _, err := b.alternatives.Suggest(ctx, userID, alternatives.Request{Dish: args})
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	b.edit(chatID, statusID, formatAlternatives(args, alts))
}

func (b *Bot) handleGrocery(ctx context.Context, chatID int64, userID, args string) {
	if args == "" {
		b.send(chatID, "Usage: /grocery <meal; meal; ...>")
		return
	}
	req := grocery.Request{Meals: splitList(args, ";")}

	statusID := b.send(chatID, "Building your shopping list...")
	list, _, err := b.grocery.Generate(ctx, userID, req)
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	if _, err := b.grocery.Save(ctx, userID, list); err != nil {
		b.logger.Warn("failed to save grocery list", zap.String("user_id", userID), zap.Error(err))
	}
	b.edit(chatID, statusID, formatGroceryList(list))
}

func (b *Bot) handleSuggest(ctx context.Context, chatID int64, userID, args string) {
	statusID := b.send(chatID, "Thinking of something tasty...")
	s, _, err := b.suggest.Suggest(ctx, userID, suggest.Request{MealType: args})
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	b.edit(chatID, statusID, formatSuggestion(s))
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, userID, url string) {
	statusID := b.send(chatID, "Clipping recipe...")
	rec, _, err := b.clipper.ClipURL(ctx, userID, url)
	if err != nil {
		b.edit(chatID, statusID, errorText(err))
		return
	}
	b.edit(chatID, statusID, fmt.Sprintf("Saved *%s* to your recipes.", rec.Name))
}

func (b *Bot) handleCredits(ctx context.Context, chatID int64, userID string) {
	balance, err := b.credits.Balance(ctx, userID)
	if err != nil {
		b.send(chatID, errorText(err))
		return
	}
	b.send(chatID, fmt.Sprintf("You have %d credits.", balance))
}

func (b *Bot) handleBuy(ctx context.Context, chatID int64, userID, args string) {
	if args == "" {
		b.send(chatID, formatPacks())
		return
	}

	checkout, err := b.payments.StartPurchase(ctx, userID, args)
	if err != nil {
		b.send(chatID, errorText(err))
		return
	}
	b.send(chatID, fmt.Sprintf("Pay here: %s\n\nWhen you are done, send /redeem %s", checkout.URL, checkout.ID))
}

func (b *Bot) handleRedeem(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.send(chatID, "Usage: /redeem <checkout>")
		return
	}

	checkout, err := b.payments.Redeem(ctx, args)
	if err != nil {
		b.send(chatID, errorText(err))
		return
	}
	balance, _ := b.credits.Balance(ctx, checkout.UserID)
	b.send(chatID, fmt.Sprintf("Purchase confirmed! You now have %d credits.", balance))
}

func (b *Bot) handleUsage(ctx context.Context, chatID, fromID int64) {
	if fromID != b.cfg.TelegramAdminID {
		b.send(chatID, "Admin only.")
		return
	}

	rollups, err := b.usage.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(chatID, errorText(err))
		return
	}
	b.send(chatID, formatDailyUsage(rollups))
}

// send posts a Markdown message and returns its ID for later edits.
func (b *Bot) send(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func errorText(err error) string {
	safe := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("Sorry, that did not work:\n```\n%s\n```", safe)
}

func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
