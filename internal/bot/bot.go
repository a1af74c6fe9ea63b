// Package bot implements the Telegram front end. It mirrors the console menu
// over bot commands, with a per-chat-user session state machine for the
// multi-step flows (register, login, issue, buy).
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tokenizelocal/tokenizelocal/internal/accounts"
	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/ledger"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
	"github.com/tokenizelocal/tokenizelocal/internal/providers/checko"
	"github.com/tokenizelocal/tokenizelocal/internal/session"
)

const (
	callbackRoleUser    = "role_user"
	callbackRoleCompany = "role_company"

	dividendHistoryLimit = 5
)

const companyHelp = `💼 You are in company mode.
Available commands:
/issue_tokens — Issue tokens
/help — Help
💡 To restart, type /start`

const userHelp = `👤 You are in user mode.
Available commands:
/register — Register
/login — Login
/companies — List of companies
/buy — Buy tokens
/balance — My balance
/dividends — My dividends
/help — Help
💡 To restart, type /start`

// Bot serves the Telegram front end over long polling.
type Bot struct {
	api         *tgbotapi.BotAPI
	ledger      *ledger.Service
	accounts    *accounts.Manager
	registry    checko.Client
	sessions    *session.Manager
	pollTimeout int
}

// New creates a bot over the given front-end dependencies
func New(api *tgbotapi.BotAPI, ledgerSvc *ledger.Service, accountsMgr *accounts.Manager, registry checko.Client, pollTimeout int) *Bot {
	return &Bot{
		api:         api,
		ledger:      ledgerSvc,
		accounts:    accountsMgr,
		registry:    registry,
		sessions:    session.NewManager(),
		pollTimeout: pollTimeout,
	}
}

// Run polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// identity maps a chat user to a ledger owner. Holdings and purchases are
// keyed by this synthetic address, not by the registered account email.
func identity(userID int64) string {
	return fmt.Sprintf("%d@telegram.local", userID)
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleRoleSelection(update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	s := b.sessions.Get(sessionKey(msg.From.ID))

	switch msg.Command() {
	case "start":
		b.start(msg, s)
	case "help":
		b.reply(msg.Chat.ID, helpText(s.Role))
	case "register":
		b.register(msg, s)
	case "login":
		b.login(msg, s)
	case "issue_tokens":
		b.issueTokens(msg, s)
	case "companies":
		b.showCompanies(ctx, msg.Chat.ID)
	case "buy":
		b.buy(ctx, msg, s)
	case "balance":
		b.showBalance(ctx, msg)
	case "dividends":
		b.showDividends(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "ℹ️ Use /help for the list of commands")
	}
}

func helpText(role session.Role) string {
	if role == session.RoleCompany {
		return companyHelp
	}
	return userHelp
}

func (b *Bot) start(msg *tgbotapi.Message, s *session.Session) {
	s.Reset()

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 User", callbackRoleUser),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 Company", callbackRoleCompany),
		),
	)
	reply := tgbotapi.NewMessage(msg.Chat.ID, "Welcome to TokenizeLocal!\nPlease select your role:")
	reply.ReplyMarkup = keyboard
	b.send(reply)
}

func (b *Bot) handleRoleSelection(query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Error(err)
	}

	s := b.sessions.Get(sessionKey(query.From.ID))
	chatID := query.Message.Chat.ID

	switch query.Data {
	case callbackRoleUser:
		s.Role = session.RoleUser
		b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, "✅ You have selected user mode."))
	case callbackRoleCompany:
		s.Role = session.RoleCompany
		b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, "✅ You have selected company mode."))
	default:
		b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, "❌ Unknown role."))
		return
	}

	b.reply(chatID, helpText(s.Role))
}

func (b *Bot) register(msg *tgbotapi.Message, s *session.Session) {
	if s.Role != session.RoleUser {
		b.reply(msg.Chat.ID, "❌ This command is only for users.")
		return
	}
	b.reply(msg.Chat.ID, "Enter your name, email, and password separated by spaces\nExample: Ivan user@example.com 1234")
	s.Awaiting = session.AwaitingRegister
}

func (b *Bot) login(msg *tgbotapi.Message, s *session.Session) {
	if s.Role != session.RoleUser {
		b.reply(msg.Chat.ID, "❌ This command is only for users.")
		return
	}
	b.reply(msg.Chat.ID, "Enter your email and password separated by a space")
	s.Awaiting = session.AwaitingLogin
}

func (b *Bot) issueTokens(msg *tgbotapi.Message, s *session.Session) {
	if s.Role != session.RoleCompany {
		b.reply(msg.Chat.ID, "❌ This command is only for companies.")
		return
	}
	b.reply(msg.Chat.ID, "Enter the company INN (10 or 12 digits):")
	s.Awaiting = session.AwaitingTaxID
}

func (b *Bot) showCompanies(ctx context.Context, chatID int64) {
	companies, err := b.ledger.ListIssuances(ctx)
	if err != nil {
		logger.Error(err)
		b.reply(chatID, "❌ Error: "+err.Error())
		return
	}
	if len(companies) == 0 {
		b.reply(chatID, "No companies available.")
		return
	}
	var sb strings.Builder
	sb.WriteString("📋 Available companies:\n")
	for idx, company := range companies {
		fmt.Fprintf(&sb, "%d. %s — %s tokens\n", idx+1, company.Name, company.Available().String())
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) showBalance(ctx context.Context, msg *tgbotapi.Message) {
	holdings, err := b.ledger.Holdings(ctx, identity(msg.From.ID))
	if err != nil {
		logger.Error(err)
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if len(holdings) == 0 {
		b.reply(msg.Chat.ID, "You have no tokens.")
		return
	}
	var sb strings.Builder
	sb.WriteString("💰 Your balance:\n")
	for _, holding := range holdings {
		fmt.Fprintf(&sb, "- %s: %s tokens\n", holding.Name, holding.Balance.String())
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) buy(ctx context.Context, msg *tgbotapi.Message, s *session.Session) {
	if s.Role != session.RoleUser {
		b.reply(msg.Chat.ID, "❌ This command is only for users.")
		return
	}
	companies, err := b.ledger.ListIssuances(ctx)
	if err != nil {
		logger.Error(err)
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if len(companies) == 0 {
		b.reply(msg.Chat.ID, "❌ No companies available.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Select a company:\n")
	for idx, company := range companies {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", idx+1, company.Name, company.Available().String())
	}
	sb.WriteString("\nEnter: NUMBER AMOUNT\nExample: 1 10")
	b.reply(msg.Chat.ID, sb.String())
	s.Awaiting = session.AwaitingPurchase
}

func (b *Bot) showDividends(ctx context.Context, msg *tgbotapi.Message) {
	records, err := b.ledger.HolderDividends(ctx, identity(msg.From.ID), dividendHistoryLimit)
	if err != nil {
		logger.Error(err)
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if len(records) == 0 {
		b.reply(msg.Chat.ID, "You have not received any dividends.")
		return
	}
	var sb strings.Builder
	sb.WriteString("📈 Your dividends:\n")
	for _, record := range records {
		fmt.Fprintf(&sb, "🏢 %s\n📅 %s\n💸 %s$\n",
			record.Name,
			record.DistributedAt.Format("2006-01-02"),
			record.Payout.StringFixed(2))
	}
	b.reply(msg.Chat.ID, sb.String())
}

// handleMessage routes free text to whichever multi-step flow is pending
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	s := b.sessions.Get(sessionKey(msg.From.ID))
	text := strings.TrimSpace(msg.Text)

	switch s.Awaiting {
	case session.AwaitingRegister:
		b.processRegister(ctx, msg, s, text)
	case session.AwaitingLogin:
		b.processLogin(ctx, msg, s, text)
	case session.AwaitingTaxID:
		b.processTaxID(ctx, msg, s, text)
	case session.AwaitingTokenAmount:
		b.processTokenAmount(ctx, msg, s, text)
	case session.AwaitingPurchase:
		b.processPurchase(ctx, msg, s, text)
	}
}

func (b *Bot) processRegister(ctx context.Context, msg *tgbotapi.Message, s *session.Session, text string) {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		b.reply(msg.Chat.ID, "❌ Required: name email password")
		return
	}
	password := parts[len(parts)-1]
	email := parts[len(parts)-2]
	name := strings.Join(parts[:len(parts)-2], " ")
	s.ClearPrompt()

	if err := b.accounts.Register(ctx, name, email, password); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			b.reply(msg.Chat.ID, "❌ User already exists.")
		case errors.Is(err, domain.ErrInvalidIdentity):
			b.reply(msg.Chat.ID, "❌ Invalid email.")
		default:
			b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		}
		return
	}
	s.Email = email
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Registration successful, %s!", name))
	b.showCompanies(ctx, msg.Chat.ID)
}

func (b *Bot) processLogin(ctx context.Context, msg *tgbotapi.Message, s *session.Session, text string) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		b.reply(msg.Chat.ID, "❌ Enter email and password")
		return
	}
	s.ClearPrompt()

	authorized, err := b.accounts.Authenticate(ctx, parts[0], parts[1])
	if err != nil {
		logger.Error(err)
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if !authorized {
		b.reply(msg.Chat.ID, "❌ Invalid email or password.")
		return
	}
	s.Email = parts[0]
	b.reply(msg.Chat.ID, "✅ Login successful!")
	b.showCompanies(ctx, msg.Chat.ID)
}

func (b *Bot) processTaxID(ctx context.Context, msg *tgbotapi.Message, s *session.Session, text string) {
	if !domain.IsValidTaxID(text) {
		b.reply(msg.Chat.ID, "❌ Invalid INN format.")
		return
	}
	s.Awaiting = session.AwaitingNone

	info, err := b.registry.CompanyInfo(ctx, text)
	if err != nil {
		logger.Error(err, zap.String("tax_id", text))
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if !checko.IsActive(info) {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Company is not active. Status: %s", info.Status))
		return
	}

	s.PendingCompany = &domain.Business{TaxID: text, Name: info.Name}
	s.Awaiting = session.AwaitingTokenAmount
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ %s\nNow enter the number of tokens:", info.Name))
}

func (b *Bot) processTokenAmount(ctx context.Context, msg *tgbotapi.Message, s *session.Session, text string) {
	company := s.PendingCompany
	s.ClearPrompt()
	if company == nil {
		b.reply(msg.Chat.ID, "❌ Error: company data not found")
		return
	}

	amount, err := decimal.NewFromString(text)
	if err != nil || !amount.IsPositive() {
		b.reply(msg.Chat.ID, "❌ Error: amount must be a positive number")
		return
	}

	if err := b.ledger.IssueTokens(ctx, company.TaxID, company.Name, amount); err != nil {
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Issued %s tokens for %s!", amount.String(), company.Name))
}

func (b *Bot) processPurchase(ctx context.Context, msg *tgbotapi.Message, s *session.Session, text string) {
	s.ClearPrompt()

	parts := strings.Fields(text)
	if len(parts) != 2 {
		b.reply(msg.Chat.ID, "❌ Error: enter two values")
		return
	}
	choice, err := strconv.Atoi(parts[0])
	if err != nil || choice <= 0 {
		b.reply(msg.Chat.ID, "❌ Error: values must be positive")
		return
	}
	amount, err := decimal.NewFromString(parts[1])
	if err != nil || !amount.IsPositive() {
		b.reply(msg.Chat.ID, "❌ Error: values must be positive")
		return
	}

	companies, err := b.ledger.ListIssuances(ctx)
	if err != nil {
		logger.Error(err)
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	if choice > len(companies) {
		b.reply(msg.Chat.ID, "❌ Error: company not found")
		return
	}
	company := companies[choice-1]

	owner := identity(msg.From.ID)
	if err := b.ledger.Purchase(ctx, owner, company.TaxID, amount); err != nil {
		var insufficient *domain.InsufficientSupplyError
		switch {
		case errors.As(err, &insufficient):
			b.reply(msg.Chat.ID, fmt.Sprintf("❌ Error: not enough tokens. Available: %s", insufficient.Remaining.String()))
		case errors.Is(err, domain.ErrInvalidOperation):
			b.reply(msg.Chat.ID, "❌ Error: not enough tokens. Available: 0")
		default:
			b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		}
		return
	}

	balance := amount
	holdings, err := b.ledger.Holdings(ctx, owner)
	if err == nil {
		for _, holding := range holdings {
			if holding.TaxID == company.TaxID {
				balance = holding.Balance
			}
		}
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Purchased %s tokens of %s!\nBalance: %s", amount.String(), company.Name, balance.String()))
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.Error(err)
	}
}
