package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	accountdomain "sellerops-backend/internal/account/domain"
	accountrepo "sellerops-backend/internal/account/repository"
	orderdomain "sellerops-backend/internal/order/domain"
	"sellerops-backend/internal/order/parser"
	"sellerops-backend/internal/order/repository"
	"sellerops-backend/pkg/config"

	"golang.org/x/oauth2"
)

// tokenRefreshBuffer: credentials expiring within this window are refreshed
// proactively, and the refreshed token is persisted before use.
const tokenRefreshBuffer = 5 * time.Minute

// maxErrorMessageLen bounds the error text stored on a run row
const maxErrorMessageLen = 2000

// SyncUsecase drives the scheduled supplier-order pipeline
type SyncUsecase interface {
	// SyncAllAccounts runs the pipeline over every connected account,
	// sequentially, with a fixed delay between accounts to stay under
	// provider rate limits. Per-account failures are recorded in that
	// account's run and do not stop the pass.
	SyncAllAccounts(ctx context.Context) error
	// SyncAccount runs the pipeline for one account on demand
	SyncAccount(ctx context.Context, accountID string) (*orderdomain.SyncRun, error)
}

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	orders       repository.SupplierOrderRepository
	settingsRepo repository.AutoFlagSettingsRepository
	runs         repository.SyncRunRepository
	accounts     accountrepo.AccountRepository
	gmail        orderdomain.MailProvider
	imap         orderdomain.MailProvider
	matcher      *Matcher
	cfg          *config.Config
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	orders repository.SupplierOrderRepository,
	settingsRepo repository.AutoFlagSettingsRepository,
	runs repository.SyncRunRepository,
	accounts accountrepo.AccountRepository,
	gmail orderdomain.MailProvider,
	imap orderdomain.MailProvider,
	cfg *config.Config,
) SyncUsecase {
	return &syncUsecase{
		orders:       orders,
		settingsRepo: settingsRepo,
		runs:         runs,
		accounts:     accounts,
		gmail:        gmail,
		imap:         imap,
		matcher:      NewMatcher(orders),
		cfg:          cfg,
	}
}

func (u *syncUsecase) SyncAllAccounts(ctx context.Context) error {
	accounts, err := u.accounts.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	log.Printf("[SyncOrchestrator] Starting sync pass over %d accounts", len(accounts))

	for i, account := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := u.syncAccount(ctx, account); err != nil {
			// Already recorded on the run row; keep going with the rest
			log.Printf("[SyncOrchestrator] Account %s sync failed: %v", account.Email, err)
		}
		if i < len(accounts)-1 {
			time.Sleep(u.cfg.AccountSyncDelay)
		}
	}

	log.Printf("[SyncOrchestrator] Sync pass completed")
	return nil
}

func (u *syncUsecase) SyncAccount(ctx context.Context, accountID string) (*orderdomain.SyncRun, error) {
	account, err := u.accounts.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	return u.syncAccount(ctx, account)
}

// syncAccount performs one run for one account. The run row is created up
// front and sealed on every exit path.
func (u *syncUsecase) syncAccount(ctx context.Context, account *accountdomain.MailAccount) (run *orderdomain.SyncRun, err error) {
	run = &orderdomain.SyncRun{
		AccountID: account.ID,
		Status:    orderdomain.SyncRunRunning,
		StartedAt: time.Now(),
	}
	if createErr := u.runs.Create(run); createErr != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", createErr)
	}

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if run.Status == orderdomain.SyncRunRunning {
			if err != nil {
				run.Status = orderdomain.SyncRunFailed
				run.ErrorMessage = truncateText(err.Error(), maxErrorMessageLen)
			} else {
				run.Status = orderdomain.SyncRunCompleted
			}
		}
		if sealErr := u.runs.Update(run); sealErr != nil {
			log.Printf("[SyncOrchestrator] Failed to seal run %s: %v", run.ID, sealErr)
		}
	}()

	// Disabled accounts still get a zero-activity run so the operator sees
	// they were considered, not silently dropped
	if !account.SyncEnabled {
		run.Status = orderdomain.SyncRunCompleted
		run.ErrorMessage = "sync disabled for this account, skipped"
		log.Printf("[SyncOrchestrator] Skipping %s: sync disabled", account.Email)
		return run, nil
	}

	provider := u.providerFor(account)
	if provider == nil {
		return run, fmt.Errorf("no mail provider for %q accounts", account.Provider)
	}

	creds, err := u.ensureCredential(ctx, account, provider)
	if err != nil {
		return run, err
	}

	settings, err := u.settingsRepo.GetOrCreateDefault()
	if err != nil {
		return run, fmt.Errorf("failed to load auto-flag settings: %w", err)
	}

	query := buildCandidateQuery(u.cfg.QueryWindowDays)
	refs, err := provider.ListMessageIDs(ctx, creds, query, u.cfg.MaxEmailsPerRun, u.tokenUpdateCallback(account))
	if err != nil {
		return run, fmt.Errorf("failed to list messages: %w", err)
	}

	log.Printf("[SyncOrchestrator] %s: %d candidate emails", account.Email, len(refs))

	now := time.Now()
	var failures []string
	for _, ref := range refs {
		if ctx.Err() != nil {
			return run, ctx.Err()
		}

		result := u.processEmail(ctx, account, provider, creds, ref, settings, now)
		run.EmailsProcessed++
		switch result.Outcome {
		case orderdomain.OutcomeCreated:
			run.OrdersCreated++
		case orderdomain.OutcomeUpdated:
			run.OrdersUpdated++
		case orderdomain.OutcomeFailed:
			failures = append(failures, fmt.Sprintf("%s: %s", result.EmailID, result.Reason))
		}
	}

	if len(failures) > 0 {
		run.ErrorMessage = truncateText(fmt.Sprintf("%d emails failed: %s", len(failures), strings.Join(failures, "; ")), maxErrorMessageLen)
	}
	run.Status = orderdomain.SyncRunCompleted

	// Individual email failures do not block the last-sync stamp
	syncedAt := time.Now()
	account.LastSyncedAt = &syncedAt
	if updateErr := u.accounts.Update(account); updateErr != nil {
		log.Printf("[SyncOrchestrator] Failed to update last-sync time for %s: %v", account.Email, updateErr)
	}

	log.Printf("[SyncOrchestrator] %s: processed=%d created=%d updated=%d failed=%d",
		account.Email, run.EmailsProcessed, run.OrdersCreated, run.OrdersUpdated, len(failures))
	return run, nil
}

// processEmail runs one candidate through the pipeline:
// idempotency check -> classifier -> extractor -> matcher -> merger/flagger.
// Failures are folded into the result, never propagated.
func (u *syncUsecase) processEmail(
	ctx context.Context,
	account *accountdomain.MailAccount,
	provider orderdomain.MailProvider,
	creds orderdomain.Credential,
	ref orderdomain.MessageRef,
	settings *orderdomain.AutoFlagSettings,
	now time.Time,
) orderdomain.EmailResult {
	// Idempotency: an email that already produced an order is done for good.
	// Checked before fetching content to keep repeated runs cheap.
	existing, err := u.orders.GetByEmailID(account.ID, ref.ID)
	if err != nil {
		return failedResult(ref.ID, fmt.Sprintf("idempotency check: %v", err))
	}
	if existing != nil {
		return orderdomain.EmailResult{EmailID: ref.ID, Outcome: orderdomain.OutcomeSkipped, Reason: "already processed"}
	}

	msg, err := provider.GetFullMessage(ctx, creds, ref.ID, u.tokenUpdateCallback(account))
	if err != nil {
		return failedResult(ref.ID, fmt.Sprintf("fetch: %v", err))
	}

	if !parser.IsSupplierOrder(msg.Subject, msg.BodyText) {
		return orderdomain.EmailResult{EmailID: ref.ID, Outcome: orderdomain.OutcomeSkipped, Reason: "not a supplier order"}
	}

	facts := parser.Extract(msg, now)

	matched, err := u.matcher.FindMatch(account.ID, &facts, now)
	if err != nil {
		return failedResult(ref.ID, fmt.Sprintf("match: %v", err))
	}

	if matched != nil {
		updates := ComputeUpdates(matched, &facts, msg.ReceivedAt)
		updates.Apply(matched)
		// Flags reflect the order as it stands after this email, not before
		matched.Flagged, matched.FlagReason = EvaluateFlags(matched, settings, now)
		if err := u.orders.Update(matched); err != nil {
			return failedResult(ref.ID, fmt.Sprintf("update: %v", err))
		}
		return orderdomain.EmailResult{EmailID: ref.ID, Outcome: orderdomain.OutcomeUpdated}
	}

	order := buildOrder(account.ID, msg, &facts)
	order.Flagged, order.FlagReason = EvaluateFlags(order, settings, now)
	if err := u.orders.Create(order); err != nil {
		return failedResult(ref.ID, fmt.Sprintf("create: %v", err))
	}
	return orderdomain.EmailResult{EmailID: ref.ID, Outcome: orderdomain.OutcomeCreated}
}

// ensureCredential returns usable credentials for the account, refreshing and
// persisting OAuth tokens that are within the expiry buffer. Missing
// credentials are configuration errors that fail the whole run.
func (u *syncUsecase) ensureCredential(ctx context.Context, account *accountdomain.MailAccount, provider orderdomain.MailProvider) (orderdomain.Credential, error) {
	if account.Provider == "imap" {
		if account.ImapServer == "" || account.ImapPassword == "" {
			return orderdomain.Credential{}, fmt.Errorf("account %s has no IMAP credentials", account.Email)
		}
		return orderdomain.Credential{
			IMAPServer:   account.ImapServer,
			IMAPPort:     account.ImapPort,
			IMAPUsername: account.Email,
			IMAPPassword: account.ImapPassword,
		}, nil
	}

	if account.AccessToken == "" && account.RefreshToken == "" {
		return orderdomain.Credential{}, fmt.Errorf("account %s has no stored credential", account.Email)
	}

	if account.RefreshToken != "" && time.Until(account.TokenExpiry) < tokenRefreshBuffer {
		token, err := provider.RefreshCredential(ctx, account.RefreshToken)
		if err != nil {
			return orderdomain.Credential{}, fmt.Errorf("failed to refresh credential for %s: %w", account.Email, err)
		}
		account.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			account.RefreshToken = token.RefreshToken
		}
		account.TokenExpiry = token.Expiry
		if err := u.accounts.Update(account); err != nil {
			return orderdomain.Credential{}, fmt.Errorf("failed to persist refreshed credential: %w", err)
		}
		log.Printf("[SyncOrchestrator] Refreshed credential for %s (expires %s)", account.Email, token.Expiry.Format(time.RFC3339))
	}

	return orderdomain.Credential{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       account.TokenExpiry,
	}, nil
}

func (u *syncUsecase) providerFor(account *accountdomain.MailAccount) orderdomain.MailProvider {
	if account.Provider == "imap" {
		return u.imap
	}
	return u.gmail
}

// tokenUpdateCallback persists tokens the provider rotates mid-run
func (u *syncUsecase) tokenUpdateCallback(account *accountdomain.MailAccount) orderdomain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		account.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			account.RefreshToken = token.RefreshToken
		}
		account.TokenExpiry = token.Expiry
		return u.accounts.Update(account)
	}
}

// buildCandidateQuery bounds the listing to recent mail that plausibly talks
// about an order, keeping per-run API usage predictable
func buildCandidateQuery(windowDays int) string {
	return fmt.Sprintf("newer_than:%dd (order OR shipped OR shipping OR tracking OR invoice OR receipt OR delivery OR confirmation)", windowDays)
}

func buildOrder(accountID string, msg *orderdomain.EmailMessage, facts *orderdomain.ParsedOrderFacts) *orderdomain.SupplierOrder {
	snippet := msg.Snippet
	if snippet == "" {
		snippet = truncateText(strings.Join(strings.Fields(msg.BodyText), " "), 200)
	}

	return &orderdomain.SupplierOrder{
		AccountID:            accountID,
		EmailID:              msg.ID,
		SupplierName:         facts.SupplierName,
		SupplierEmail:        facts.SupplierEmail,
		OrderNumber:          facts.OrderNumber,
		Status:               facts.Status,
		TrackingNumber:       facts.TrackingNumber,
		Carrier:              facts.Carrier,
		OrderDate:            facts.OrderDate,
		ExpectedDeliveryDate: facts.ExpectedDeliveryDate,
		TotalCost:            facts.TotalCost,
		Currency:             facts.Currency,
		EmailSubject:         msg.Subject,
		EmailSnippet:         snippet,
		EmailBody:            truncateText(msg.BodyText, 2000),
	}
}

func failedResult(emailID, reason string) orderdomain.EmailResult {
	return orderdomain.EmailResult{EmailID: emailID, Outcome: orderdomain.OutcomeFailed, Reason: reason}
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
