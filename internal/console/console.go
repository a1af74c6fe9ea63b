// Package console implements the numbered-menu REPL front end. It owns input
// parsing, the session state machine, and the translation of ledger error
// kinds into user-facing messages; the ledger core never touches process I/O.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tokenizelocal/tokenizelocal/internal/accounts"
	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/ledger"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
	"github.com/tokenizelocal/tokenizelocal/internal/providers/checko"
	"github.com/tokenizelocal/tokenizelocal/internal/session"
)

const companyHelp = `💼 You are in Company Mode.

Available commands:
4. Issue Tokens
8. Help
9. Exit

💡 To restart, enter 0`

const userHelp = `👤 You are in User Mode.

Available commands:
1. Login as User
2. Register as User
5. List Companies
6. Buy Tokens
7. My Balance
8. Help
9. Exit

💡 To restart, enter 0`

// Console drives one interactive session over the injected reader and writer.
type Console struct {
	ledger   *ledger.Service
	accounts *accounts.Manager
	registry checko.Client
	sessions *session.Manager

	in  *bufio.Scanner
	out io.Writer

	// sessionID is the process-local session token; it plays the role the
	// chat user id plays in the bot front end
	sessionID string
}

// New creates a console over the given front-end dependencies
func New(ledgerSvc *ledger.Service, accountsMgr *accounts.Manager, registry checko.Client, in io.Reader, out io.Writer) *Console {
	return &Console{
		ledger:    ledgerSvc,
		accounts:  accountsMgr,
		registry:  registry,
		sessions:  session.NewManager(),
		in:        bufio.NewScanner(in),
		out:       out,
		sessionID: uuid.NewString(),
	}
}

// Run executes the menu loop until the user exits or input is exhausted
func (c *Console) Run(ctx context.Context) error {
	c.printf("=== 🌐 TokenizeLocal Console App ===\n")
	c.showHelp()

	for {
		choice, ok := c.prompt("\nEnter your choice (0-9): ")
		if !ok {
			return nil
		}

		switch choice {
		case "0":
			c.resetSession()
			c.showHelp()
		case "1":
			c.loginUser(ctx)
		case "2":
			c.registerUser(ctx)
		case "3":
			c.session().Role = session.RoleCompany
			c.printf("[INFO] You have selected Company Mode.\n")
			c.showHelp()
		case "4":
			if c.session().Role == session.RoleCompany {
				c.issueTokens(ctx)
			} else {
				c.printf("[ERROR] Please select Company Mode first (command 3).\n")
			}
		case "5":
			c.showCompanies(ctx)
		case "6":
			c.buyTokens(ctx)
		case "7":
			c.showBalance(ctx)
		case "8":
			c.showHelp()
		case "9":
			c.printf("👋 Exiting TokenizeLocal...\n")
			return nil
		default:
			c.printf("[ERROR] Invalid choice. Enter 0-9.\n")
		}
	}
}

func (c *Console) session() *session.Session {
	return c.sessions.Get(c.sessionID)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt prints the label and reads one trimmed line. ok is false when the
// input stream is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) showHelp() {
	if c.session().Role == session.RoleCompany {
		c.printf("%s\n", companyHelp)
	} else {
		c.printf("%s\n", userHelp)
	}
}

func (c *Console) resetSession() {
	c.sessions.Reset(c.sessionID)
	c.printf("\n🔄 Session reset. You can start fresh.\n")
}

func (c *Console) loginUser(ctx context.Context) {
	c.printf("\n🔐 Login as User\n")
	email, ok := c.prompt("Enter email: ")
	if !ok {
		return
	}
	password, ok := c.prompt("Enter password: ")
	if !ok {
		return
	}

	authorized, err := c.accounts.Authenticate(ctx, email, password)
	if err != nil {
		logger.Error(err, zap.String("email", email))
		c.printf("[ERROR] Login failed: %v\n", err)
		return
	}
	if !authorized {
		c.printf("[ERROR] Invalid email or password.\n")
		return
	}

	s := c.session()
	s.Email = email
	s.Role = session.RoleUser
	c.printf("[INFO] Login successful for %s\n", email)
	c.showHelp()
}

func (c *Console) registerUser(ctx context.Context) {
	c.printf("\n📝 Register New User\n")
	name, ok := c.prompt("Name: ")
	if !ok {
		return
	}
	email, ok := c.prompt("Email: ")
	if !ok {
		return
	}
	password, ok := c.prompt("Password: ")
	if !ok {
		return
	}

	if err := c.accounts.Register(ctx, name, email, password); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			c.printf("[ERROR] User with this email already exists.\n")
		case errors.Is(err, domain.ErrInvalidIdentity):
			c.printf("[ERROR] Invalid email format.\n")
		default:
			c.printf("[ERROR] Registration failed: %v\n", err)
		}
		return
	}

	s := c.session()
	s.Email = email
	s.Role = session.RoleUser
	c.printf("[INFO] Registration successful! Welcome, %s!\n", name)
	c.showHelp()
}

func (c *Console) issueTokens(ctx context.Context) {
	c.printf("\n🏢 Company Mode\n")
	taxID, ok := c.prompt("Enter company INN: ")
	if !ok {
		return
	}

	if !domain.IsValidTaxID(taxID) {
		c.printf("[ERROR] Invalid INN format. Must be 10 or 12 digits.\n")
		return
	}

	info, err := c.registry.CompanyInfo(ctx, taxID)
	if err != nil {
		logger.Error(err, zap.String("tax_id", taxID))
		c.printf("[ERROR] Token issuance failed: %v\n", err)
		return
	}
	if !checko.IsActive(info) {
		c.printf("[ERROR] Company is not active. Status: %s\n", info.Status)
		return
	}

	c.printf("[INFO] Company found: %s\n", info.Name)

	amountText, ok := c.prompt("How many tokens to issue? ")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil || !amount.IsPositive() {
		c.printf("[ERROR] Token issuance failed: amount must be a positive number\n")
		return
	}

	if err := c.ledger.IssueTokens(ctx, taxID, info.Name, amount); err != nil {
		c.printf("[ERROR] Token issuance failed: %v\n", err)
		return
	}
	c.printf("[INFO] ✅ Successfully issued %s tokens for '%s'\n", amount.String(), info.Name)
}

// listCompanies prints the numbered listing and returns it so callers can
// resolve a user's menu pick against the same snapshot
func (c *Console) listCompanies(ctx context.Context) []domain.IssuanceSummary {
	companies, err := c.ledger.ListIssuances(ctx)
	if err != nil {
		logger.Error(err)
		c.printf("[ERROR] Failed to list companies: %v\n", err)
		return nil
	}
	if len(companies) == 0 {
		c.printf("No companies available.\n")
		return nil
	}
	for idx, company := range companies {
		c.printf("%d. %s (INN: %s) — Tokens available: %s\n",
			idx+1, company.Name, company.TaxID, company.Available().String())
	}
	return companies
}

func (c *Console) showCompanies(ctx context.Context) {
	c.printf("\n📋 Available Companies:\n")
	c.listCompanies(ctx)
}

func (c *Console) buyTokens(ctx context.Context) {
	s := c.session()
	if !s.LoggedIn() {
		c.printf("[ERROR] Please log in as a user first.\n")
		return
	}

	c.printf("\n🛒 Buy Tokens\n")
	companies := c.listCompanies(ctx)
	if companies == nil {
		return
	}

	choiceText, ok := c.prompt("Choose company number: ")
	if !ok {
		return
	}
	amountText, ok := c.prompt("How many tokens to buy? ")
	if !ok {
		return
	}

	choice, err := strconv.Atoi(choiceText)
	if err != nil || choice <= 0 || choice > len(companies) {
		c.printf("[ERROR] Input error: no such company\n")
		return
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil || !amount.IsPositive() {
		c.printf("[ERROR] Input error: amount must be a positive number\n")
		return
	}

	company := companies[choice-1]
	if err := c.ledger.Purchase(ctx, s.Email, company.TaxID, amount); err != nil {
		var insufficient *domain.InsufficientSupplyError
		switch {
		case errors.As(err, &insufficient):
			c.printf("[ERROR] Input error: not enough tokens. Available: %s\n", insufficient.Remaining.String())
		case errors.Is(err, domain.ErrInvalidOperation):
			c.printf("[ERROR] Input error: not enough tokens. Available: 0\n")
		default:
			c.printf("[ERROR] Unexpected error: %v\n", err)
		}
		return
	}

	balance := decimal.Zero
	holdings, err := c.ledger.Holdings(ctx, s.Email)
	if err != nil {
		logger.Error(err, zap.String("owner", s.Email))
	} else {
		for _, holding := range holdings {
			if holding.TaxID == company.TaxID {
				balance = holding.Balance
			}
		}
	}

	c.printf("\n✅ Successfully bought %s tokens of '%s'\n", amount.String(), company.Name)
	c.printf("Your current balance: %s tokens\n", balance.String())
}

func (c *Console) showBalance(ctx context.Context) {
	s := c.session()
	if !s.LoggedIn() {
		c.printf("[ERROR] Please log in first.\n")
		return
	}

	c.printf("\n💰 Your Balance:\n")
	holdings, err := c.ledger.Holdings(ctx, s.Email)
	if err != nil {
		logger.Error(err, zap.String("owner", s.Email))
		c.printf("[ERROR] Failed to load balance: %v\n", err)
		return
	}
	if len(holdings) == 0 {
		c.printf("You have no tokens yet.\n")
		return
	}
	for _, holding := range holdings {
		c.printf("- %s: %s tokens\n", holding.Name, holding.Balance.String())
	}
}
