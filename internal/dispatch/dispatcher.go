package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/conversation"
	"github.com/miguelangat/dividela2-sub008/internal/fuzzy"
	"github.com/miguelangat/dividela2-sub008/internal/model"
	"github.com/miguelangat/dividela2-sub008/internal/nlp"
)

// Config tunes dispatcher behavior. Zero values fall back to defaults.
type Config struct {
	// FuzzyFloor is the minimum similarity for a category match.
	FuzzyFloor float64
	// SelectionDelta is the score gap under which the top two category
	// matches count as a near-tie needing disambiguation.
	SelectionDelta float64
	// BudgetWarnRatio is the fraction of a category budget past which a
	// successful add carries a warning.
	BudgetWarnRatio float64
	// Payer is recorded as the paying partner on created expenses.
	Payer string
	// MaxCandidates caps the disambiguation list length.
	MaxCandidates int
}

const (
	defaultSelectionDelta  = 0.15
	defaultBudgetWarnRatio = 0.9
	defaultPayer           = "me"
	defaultMaxCandidates   = 5
	defaultListLimit       = 5
)

func (c Config) withDefaults() Config {
	if c.FuzzyFloor <= 0 || c.FuzzyFloor > 1 {
		c.FuzzyFloor = fuzzy.DefaultFloor
	}
	if c.SelectionDelta <= 0 {
		c.SelectionDelta = defaultSelectionDelta
	}
	if c.BudgetWarnRatio <= 0 {
		c.BudgetWarnRatio = defaultBudgetWarnRatio
	}
	if c.Payer == "" {
		c.Payer = defaultPayer
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = defaultMaxCandidates
	}
	return c
}

// Dispatcher is the command pipeline entry point. A single conversation is
// expected to be processed sequentially; distinct conversations are
// independent and may run concurrently.
type Dispatcher struct {
	expenses   ExpenseStore
	budgets    BudgetReader
	tracker    *conversation.Tracker
	classifier *nlp.Classifier
	resolver   *fuzzy.Resolver
	now        func() time.Time
	cfg        Config
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the clock used for default dates and pending
// interaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithClassifier substitutes a custom-rule classifier.
func WithClassifier(c *nlp.Classifier) Option {
	return func(d *Dispatcher) {
		d.classifier = c
	}
}

// New creates a dispatcher over the given collaborators. The tracker is
// owned by the caller so its lifecycle follows the host session.
func New(expenses ExpenseStore, budgets BudgetReader, tracker *conversation.Tracker, cfg Config, opts ...Option) (*Dispatcher, error) {
	if expenses == nil {
		return nil, fmt.Errorf("expense store is required")
	}
	if budgets == nil {
		return nil, fmt.Errorf("budget reader is required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("conversation tracker is required")
	}

	cfg = cfg.withDefaults()
	classifier, err := nlp.NewClassifier(nlp.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	d := &Dispatcher{
		expenses:   expenses,
		budgets:    budgets,
		tracker:    tracker,
		classifier: classifier,
		resolver:   fuzzy.NewResolver(cfg.FuzzyFloor),
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch processes one chat input for a conversation and always returns
// exactly one response; failures come back as structured failure
// responses, never as panics or errors across this boundary. Replies to a
// pending confirmation or selection are recognized here too, so the UI
// funnels every input through this single call.
func (d *Dispatcher) Dispatch(ctx context.Context, conversationID, text string, categories []model.Category) *Response {
	text = strings.TrimSpace(text)

	if pending := d.tracker.GetPending(conversationID); pending != nil {
		switch pending.Kind {
		case model.AwaitingConfirmation:
			return d.handleConfirmationReply(ctx, conversationID, text, pending)
		case model.AwaitingSelection:
			return d.handleSelectionReply(ctx, conversationID, text, pending, categories)
		}
	}

	return d.handleCommand(ctx, conversationID, text, categories)
}

// handleCommand runs the IDLE-state path: classify, resolve, execute.
func (d *Dispatcher) handleCommand(ctx context.Context, conversationID, text string, categories []model.Category) *Response {
	intent, entities := d.classifier.Classify(text)
	slog.Debug("classified chat input",
		"conversation", conversationID,
		"intent", intent,
		"has_amount", entities.HasAmount(),
		"category_token", entities.CategoryToken)

	switch intent {
	case model.IntentHelp, model.IntentUnknown:
		return &Response{Intent: intent, Success: true, Text: helpText(intent)}

	case model.IntentQueryBalance:
		return d.queryBalance(ctx, intent)

	case model.IntentListExpenses:
		return d.listExpenses(ctx, intent)

	case model.IntentSettle:
		return d.beginSettle(ctx, conversationID, intent)

	case model.IntentDeleteExpense:
		return d.beginDelete(ctx, conversationID, intent, entities)

	case model.IntentEditExpense:
		return d.editExpense(ctx, conversationID, entities, categories)

	case model.IntentQueryBudget, model.IntentQuerySpending:
		return d.queryCategoryFigures(ctx, conversationID, intent, entities, categories)

	case model.IntentAddExpense:
		return d.addExpense(ctx, conversationID, entities, categories)
	}

	return &Response{Intent: intent, Success: true, Text: helpText(model.IntentUnknown)}
}

// addExpense resolves the category and either records the expense, asks
// for a missing amount, or opens a disambiguation exchange.
func (d *Dispatcher) addExpense(ctx context.Context, conversationID string, entities model.EntitySet, categories []model.Category) *Response {
	if !entities.HasAmount() {
		return &Response{
			Intent:   model.IntentAddExpense,
			Entities: entities,
			Success:  true,
			Text:     "How much was it? Try something like \"add $25 for groceries\".",
		}
	}

	resolution := d.resolveCategory(entities.CategoryToken, categories)
	if resolution.needsSelection {
		return d.beginSelection(conversationID, model.IntentAddExpense, entities, resolution.candidates)
	}

	return d.createExpense(ctx, conversationID, entities, resolution.id, resolution.name, resolution.notice)
}

// createExpense performs the mutation plus the budget threshold check.
func (d *Dispatcher) createExpense(ctx context.Context, conversationID string, entities model.EntitySet, categoryID int, categoryName, notice string) *Response {
	split := model.DefaultSplit()
	if entities.Split != nil {
		split = *entities.Split
	}
	date := dayOf(d.now())
	if entities.Date != nil {
		date = *entities.Date
	}

	expense := &model.Expense{
		Amount:       *entities.Amount,
		Description:  entities.Description,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Date:         date,
		PaidBy:       d.cfg.Payer,
		Split:        split,
	}

	created, err := d.expenses.CreateExpense(ctx, expense)
	if err != nil {
		return failure(model.IntentAddExpense, entities, fmt.Sprintf("Couldn't save that expense: %v", err))
	}
	d.tracker.SetLastExpenseID(conversationID, created.ID)

	resp := &Response{
		Intent:   model.IntentAddExpense,
		Entities: entities,
		Success:  true,
		Text:     addedText(created, notice),
		Warning:  d.budgetWarning(ctx, categoryID, categoryName),
	}
	return resp
}

// budgetWarning checks month-to-date spend against the category budget.
// A failed budget lookup never fails the add; the warning is just omitted.
func (d *Dispatcher) budgetWarning(ctx context.Context, categoryID int, categoryName string) string {
	if categoryID == 0 {
		return ""
	}
	status, err := d.budgets.GetBudgetStatus(ctx, categoryID)
	if err != nil {
		slog.Debug("budget check skipped", "category_id", categoryID, "error", err)
		return ""
	}
	if status == nil || !status.HasLimit() {
		return ""
	}
	if status.Spent >= d.cfg.BudgetWarnRatio*status.Limit {
		return fmt.Sprintf("Heads up: %s of the %s %s budget is spent.",
			formatMoney(status.Spent), formatMoney(status.Limit), categoryName)
	}
	return ""
}

// editExpense applies an in-place update to the expense in context.
func (d *Dispatcher) editExpense(ctx context.Context, conversationID string, entities model.EntitySet, categories []model.Category) *Response {
	target := d.targetExpense(conversationID, entities)
	if target == 0 {
		return failure(model.IntentEditExpense, entities, "I don't know which expense you mean — add or mention one first.")
	}
	entities.TargetExpenseID = target

	if !entities.HasAmount() && entities.Date == nil && entities.Split == nil && entities.CategoryToken == "" {
		return failure(model.IntentEditExpense, entities, "Tell me what to change, e.g. \"change it to $40\" or \"change it to groceries\".")
	}

	var categoryID *int
	var categoryName string
	if entities.CategoryToken != "" {
		resolution := d.resolveCategory(entities.CategoryToken, categories)
		if resolution.needsSelection {
			return d.beginSelection(conversationID, model.IntentEditExpense, entities, resolution.candidates)
		}
		if resolution.id != 0 {
			id := resolution.id
			categoryID = &id
			categoryName = resolution.name
		}
	}

	return d.applyEdit(ctx, conversationID, entities, categoryID, categoryName)
}

func (d *Dispatcher) applyEdit(ctx context.Context, conversationID string, entities model.EntitySet, categoryID *int, categoryName string) *Response {
	update := model.ExpenseUpdate{
		Amount:     entities.Amount,
		Date:       entities.Date,
		Split:      entities.Split,
		CategoryID: categoryID,
	}

	updated, err := d.expenses.UpdateExpense(ctx, entities.TargetExpenseID, update)
	if err != nil {
		return failure(model.IntentEditExpense, entities, fmt.Sprintf("Couldn't update that expense: %v", err))
	}
	d.tracker.SetLastExpenseID(conversationID, updated.ID)

	text := fmt.Sprintf("Updated: %s", expenseLine(updated))
	if categoryName != "" && updated.CategoryName == "" {
		text = fmt.Sprintf("Updated: %s for %s", formatMoney(updated.Amount), categoryName)
	}
	return &Response{Intent: model.IntentEditExpense, Entities: entities, Success: true, Text: text}
}

// beginDelete opens the confirmation exchange for a destructive delete.
// The mutation is not performed yet.
func (d *Dispatcher) beginDelete(ctx context.Context, conversationID string, intent model.Intent, entities model.EntitySet) *Response {
	target := d.targetExpense(conversationID, entities)
	if target == 0 {
		return failure(intent, entities, "There's no recent expense to delete in this conversation.")
	}
	entities.TargetExpenseID = target

	expense, err := d.expenses.GetExpenseByID(ctx, target)
	if err != nil {
		return failure(intent, entities, fmt.Sprintf("Couldn't look up that expense: %v", err))
	}

	pending := &model.PendingInteraction{
		Kind:      model.AwaitingConfirmation,
		Intent:    intent,
		Entities:  entities,
		Summary:   fmt.Sprintf("delete %s", expenseLine(expense)),
		CreatedAt: d.now(),
	}
	d.tracker.SetPending(conversationID, pending)

	return &Response{
		Intent:   intent,
		Entities: entities,
		Success:  true,
		Pending:  pending,
		Text:     fmt.Sprintf("Delete %s — are you sure? (yes/no)", expenseLine(expense)),
	}
}

// beginSettle opens the confirmation exchange for settling up.
func (d *Dispatcher) beginSettle(ctx context.Context, conversationID string, intent model.Intent) *Response {
	balance, err := d.expenses.GetBalance(ctx)
	if err != nil {
		return failure(intent, model.EntitySet{}, fmt.Sprintf("Couldn't compute the balance: %v", err))
	}
	if balance.IsSettled() {
		return &Response{Intent: intent, Success: true, Text: "You're all settled up — nothing to do."}
	}

	pending := &model.PendingInteraction{
		Kind:      model.AwaitingConfirmation,
		Intent:    intent,
		Summary:   fmt.Sprintf("settle up (%s owes %s %s)", balance.Owes, balance.OwedTo, formatMoney(balance.Amount)),
		CreatedAt: d.now(),
	}
	d.tracker.SetPending(conversationID, pending)

	return &Response{
		Intent:  intent,
		Success: true,
		Pending: pending,
		Text: fmt.Sprintf("%s owes %s %s. Settle up and clear the balance? (yes/no)",
			balance.Owes, balance.OwedTo, formatMoney(balance.Amount)),
	}
}

// queryCategoryFigures answers budget and spending questions, resolving
// the category token when one is present.
func (d *Dispatcher) queryCategoryFigures(ctx context.Context, conversationID string, intent model.Intent, entities model.EntitySet, categories []model.Category) *Response {
	if entities.CategoryToken == "" {
		status, err := d.budgets.GetOverallBudgetStatus(ctx)
		if err != nil {
			return failure(intent, entities, fmt.Sprintf("Couldn't fetch the figures: %v", err))
		}
		return &Response{Intent: intent, Entities: entities, Success: true, Text: figuresText(intent, status)}
	}

	resolution := d.resolveCategory(entities.CategoryToken, categories)
	if resolution.needsSelection {
		return d.beginSelection(conversationID, intent, entities, resolution.candidates)
	}
	if resolution.id == 0 {
		return &Response{
			Intent:   intent,
			Entities: entities,
			Success:  true,
			Text:     fmt.Sprintf("I don't know a category like %q. Try one of your existing categories.", entities.CategoryToken),
		}
	}

	return d.categoryFigures(ctx, intent, entities, resolution.id)
}

func (d *Dispatcher) categoryFigures(ctx context.Context, intent model.Intent, entities model.EntitySet, categoryID int) *Response {
	status, err := d.budgets.GetBudgetStatus(ctx, categoryID)
	if err != nil {
		return failure(intent, entities, fmt.Sprintf("Couldn't fetch the figures: %v", err))
	}
	return &Response{Intent: intent, Entities: entities, Success: true, Text: figuresText(intent, status)}
}

func (d *Dispatcher) queryBalance(ctx context.Context, intent model.Intent) *Response {
	balance, err := d.expenses.GetBalance(ctx)
	if err != nil {
		return failure(intent, model.EntitySet{}, fmt.Sprintf("Couldn't compute the balance: %v", err))
	}
	if balance.IsSettled() {
		return &Response{Intent: intent, Success: true, Text: "You're all settled up."}
	}
	return &Response{
		Intent:  intent,
		Success: true,
		Text:    fmt.Sprintf("%s owes %s %s.", balance.Owes, balance.OwedTo, formatMoney(balance.Amount)),
	}
}

func (d *Dispatcher) listExpenses(ctx context.Context, intent model.Intent) *Response {
	expenses, err := d.expenses.ListExpenses(ctx, defaultListLimit)
	if err != nil {
		return failure(intent, model.EntitySet{}, fmt.Sprintf("Couldn't list expenses: %v", err))
	}
	return &Response{Intent: intent, Success: true, Text: expenseListText(expenses)}
}

// handleConfirmationReply interprets a reply while awaiting confirmation.
// Anything that is neither affirmative nor negative re-prompts: destructive
// actions only proceed on an explicit yes, so unrelated-looking commands
// are conservatively treated as a failed yes/no attempt.
func (d *Dispatcher) handleConfirmationReply(ctx context.Context, conversationID, text string, pending *model.PendingInteraction) *Response {
	switch {
	case isAffirmative(text):
		// Back to IDLE before executing: a failed action must not leave
		// the user stuck awaiting confirmation again.
		d.tracker.ClearPending(conversationID)
		return d.executeConfirmed(ctx, conversationID, pending)

	case isNegative(text):
		d.tracker.ClearPending(conversationID)
		return &Response{Intent: pending.Intent, Entities: pending.Entities, Success: true, Text: "Okay, cancelled."}

	default:
		return &Response{
			Intent:   pending.Intent,
			Entities: pending.Entities,
			Success:  true,
			Pending:  pending,
			Text:     fmt.Sprintf("Please answer yes or no: %s?", pending.Summary),
		}
	}
}

// executeConfirmed performs the action stored in a confirmed interaction.
func (d *Dispatcher) executeConfirmed(ctx context.Context, conversationID string, pending *model.PendingInteraction) *Response {
	switch pending.Intent {
	case model.IntentDeleteExpense:
		if err := d.expenses.DeleteExpense(ctx, pending.Entities.TargetExpenseID); err != nil {
			return failure(pending.Intent, pending.Entities, fmt.Sprintf("Couldn't delete the expense: %v", err))
		}
		d.tracker.SetLastExpenseID(conversationID, 0)
		return &Response{Intent: pending.Intent, Entities: pending.Entities, Success: true, Text: "Deleted."}

	case model.IntentSettle:
		count, err := d.expenses.SettleExpenses(ctx)
		if err != nil {
			return failure(pending.Intent, pending.Entities, fmt.Sprintf("Couldn't settle up: %v", err))
		}
		return &Response{
			Intent:  pending.Intent,
			Success: true,
			Text:    fmt.Sprintf("Settled %d expense(s). You're even again.", count),
		}
	}

	return failure(pending.Intent, pending.Entities, "That pending action is no longer supported.")
}

// handleSelectionReply interprets a reply while awaiting a category
// choice. A confidently classified brand-new command supersedes the
// pending selection rather than trapping the user in the list.
func (d *Dispatcher) handleSelectionReply(ctx context.Context, conversationID, text string, pending *model.PendingInteraction, categories []model.Category) *Response {
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		if n < 1 || n > len(pending.Candidates) {
			return d.reprompSelection(pending, fmt.Sprintf("Pick a number between 1 and %d, or say cancel.", len(pending.Candidates)))
		}
		d.tracker.ClearPending(conversationID)
		chosen := pending.Candidates[n-1]
		return d.executeWithCategory(ctx, conversationID, pending, chosen)
	}

	if isNegative(text) {
		d.tracker.ClearPending(conversationID)
		return &Response{Intent: pending.Intent, Entities: pending.Entities, Success: true, Text: "Okay, cancelled."}
	}

	if intent, _ := d.classifier.Classify(text); intent != model.IntentUnknown {
		slog.Debug("pending selection superseded by new command", "conversation", conversationID, "intent", intent)
		d.tracker.ClearPending(conversationID)
		return d.handleCommand(ctx, conversationID, text, categories)
	}

	return d.reprompSelection(pending, "Which one did you mean?")
}

func (d *Dispatcher) reprompSelection(pending *model.PendingInteraction, lead string) *Response {
	return &Response{
		Intent:   pending.Intent,
		Entities: pending.Entities,
		Success:  true,
		Pending:  pending,
		Text:     lead + "\n" + candidateListText(pending.Candidates),
	}
}

// executeWithCategory resumes the stored intent with the chosen category.
func (d *Dispatcher) executeWithCategory(ctx context.Context, conversationID string, pending *model.PendingInteraction, chosen model.CategoryCandidate) *Response {
	switch pending.Intent {
	case model.IntentAddExpense:
		return d.createExpense(ctx, conversationID, pending.Entities, chosen.ID, chosen.Name, "")
	case model.IntentEditExpense:
		id := chosen.ID
		return d.applyEdit(ctx, conversationID, pending.Entities, &id, chosen.Name)
	case model.IntentQueryBudget, model.IntentQuerySpending:
		return d.categoryFigures(ctx, pending.Intent, pending.Entities, chosen.ID)
	}
	return failure(pending.Intent, pending.Entities, "That pending action is no longer supported.")
}

// beginSelection stores and returns an AWAITING_SELECTION interaction.
func (d *Dispatcher) beginSelection(conversationID string, intent model.Intent, entities model.EntitySet, candidates []model.CategoryCandidate) *Response {
	pending := &model.PendingInteraction{
		Kind:       model.AwaitingSelection,
		Intent:     intent,
		Entities:   entities,
		Candidates: candidates,
		CreatedAt:  d.now(),
	}
	d.tracker.SetPending(conversationID, pending)

	return &Response{
		Intent:   intent,
		Entities: entities,
		Success:  true,
		Pending:  pending,
		Text: fmt.Sprintf("Did you mean one of these for %q? Reply with a number.\n%s",
			entities.CategoryToken, candidateListText(candidates)),
	}
}

// categoryResolution is the outcome of fuzzy-resolving a token.
type categoryResolution struct {
	name           string
	notice         string
	candidates     []model.CategoryCandidate
	id             int
	needsSelection bool
}

// resolveCategory maps a raw token onto the category list. Zero matches
// fall back to the uncategorized bucket with a notice; near-tied matches
// request a selection.
func (d *Dispatcher) resolveCategory(token string, categories []model.Category) categoryResolution {
	if token == "" {
		return categoryResolution{id: 0, name: model.UncategorizedName}
	}

	candidates := make([]fuzzy.Candidate, 0, len(categories))
	for _, c := range categories {
		candidates = append(candidates, fuzzy.Candidate{ID: c.ID, Name: c.Name})
	}

	matches := d.resolver.Match(token, candidates)
	switch {
	case len(matches) == 0:
		return categoryResolution{
			id:     0,
			name:   model.UncategorizedName,
			notice: fmt.Sprintf("I couldn't match %q to a category, so I filed it under %s.", token, model.UncategorizedName),
		}
	case len(matches) == 1 || matches[0].Score-matches[1].Score > d.cfg.SelectionDelta:
		return categoryResolution{id: matches[0].ID, name: matches[0].Name}
	default:
		limit := d.cfg.MaxCandidates
		if len(matches) < limit {
			limit = len(matches)
		}
		list := make([]model.CategoryCandidate, 0, limit)
		for _, m := range matches[:limit] {
			list = append(list, model.CategoryCandidate{ID: m.ID, Name: m.Name})
		}
		return categoryResolution{needsSelection: true, candidates: list}
	}
}

// targetExpense resolves which expense an edit/delete refers to, falling
// back to the conversation's last touched expense.
func (d *Dispatcher) targetExpense(conversationID string, entities model.EntitySet) int64 {
	if entities.TargetExpenseID != 0 {
		return entities.TargetExpenseID
	}
	return d.tracker.LastExpenseID(conversationID)
}

func failure(intent model.Intent, entities model.EntitySet, reason string) *Response {
	return &Response{Intent: intent, Entities: entities, Success: false, Text: reason}
}

var affirmatives = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true,
	"confirm": true, "ok": true, "okay": true, "sure": true,
}

var negatives = map[string]bool{
	"no": true, "n": true, "nope": true, "cancel": true,
}

func isAffirmative(text string) bool {
	return affirmatives[normalizeReply(text)]
}

func isNegative(text string) bool {
	return negatives[normalizeReply(text)]
}

func normalizeReply(text string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(text), "!. "))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
