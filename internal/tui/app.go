package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pennypost/pennypost/internal/config"
	"github.com/pennypost/pennypost/internal/database/repository"
	"github.com/pennypost/pennypost/internal/recommend"
	"github.com/pennypost/pennypost/internal/service"
)

// App is the expense-entry flow: pick a category, pick or type a subcategory
// and shop (suggestions come from the recommendation cache), enter an amount,
// save. It exists to drive the suggestion subsystem end to end.
type App struct {
	ctx      context.Context
	cfg      config.Config
	userID   int64
	cats     *repository.CategoryRepo
	expenses *service.ExpenseService
	rec      *recommend.Service

	state      appState
	categories []repository.Category
	catCursor  int
	sugCursor  int
	input      string
	draft      service.ExpenseInput
	status     string
}

type appState string

const (
	viewCategories  appState = "categories"
	viewSubcategory appState = "subcategory"
	viewShop        appState = "shop"
	viewAmount      appState = "amount"
)

type categoriesMsg []repository.Category

type bootstrapDoneMsg struct{}

type preloadDoneMsg struct{}

type savedMsg string

type errMsg struct{ err error }

func New(ctx context.Context, cfg config.Config, userID int64, cats *repository.CategoryRepo, expenses *service.ExpenseService, rec *recommend.Service) *App {
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		userID:   userID,
		cats:     cats,
		expenses: expenses,
		rec:      rec,
		state:    viewCategories,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCategories(), a.bootstrap())
}

func (a *App) loadCategories() tea.Cmd {
	return func() tea.Msg {
		cats, err := a.cats.List(a.ctx, a.userID)
		if err != nil {
			return errMsg{err}
		}
		return categoriesMsg(cats)
	}
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		a.rec.PreloadAll(a.ctx)
		return bootstrapDoneMsg{}
	}
}

func (a *App) preload(categoryName string) tea.Cmd {
	return func() tea.Msg {
		a.rec.PreloadCategory(a.ctx, a.userID, categoryName)
		return preloadDoneMsg{}
	}
}

func (a *App) save() tea.Cmd {
	draft := a.draft
	return func() tea.Msg {
		id, err := a.expenses.Log(a.ctx, draft)
		if err != nil {
			return errMsg{err}
		}
		return savedMsg(id)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)
	case categoriesMsg:
		a.categories = m
		if a.catCursor >= len(a.categories) {
			a.catCursor = 0
		}
	case bootstrapDoneMsg:
		a.status = "suggestions loaded"
	case preloadDoneMsg:
		// suggestions are read from the cache on render
	case savedMsg:
		a.status = "saved"
		a.state = viewCategories
		a.draft = service.ExpenseInput{UserID: a.userID}
		a.input = ""
		a.sugCursor = 0
	case errMsg:
		a.status = m.err.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.state == viewCategories {
		switch m.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "up", "k":
			if a.catCursor > 0 {
				a.catCursor--
			}
		case "down", "j":
			if a.catCursor < len(a.categories)-1 {
				a.catCursor++
			}
		case "enter":
			if len(a.categories) == 0 {
				return a, nil
			}
			cat := a.categories[a.catCursor]
			a.draft = service.ExpenseInput{UserID: a.userID, CategoryID: cat.ID, CategoryName: cat.Name}
			a.state = viewSubcategory
			a.input = ""
			a.sugCursor = 0
			a.status = ""
			return a, a.preload(cat.Name)
		}
		return a, nil
	}

	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewCategories
		a.input = ""
		a.sugCursor = 0
		return a, nil
	case "up":
		if a.sugCursor > 0 {
			a.sugCursor--
		}
		return a, nil
	case "down":
		a.sugCursor++
		return a, nil
	case "backspace":
		if len(a.input) > 0 {
			r := []rune(a.input)
			a.input = string(r[:len(r)-1])
		}
		a.sugCursor = 0
		return a, nil
	case "enter":
		return a.accept()
	case "ctrl+d":
		return a.forget()
	default:
		if m.Type == tea.KeyRunes || m.Type == tea.KeySpace {
			a.input += m.String()
			a.sugCursor = 0
		}
		return a, nil
	}
}

// forget archives the highlighted suggestion so it stops being offered.
func (a *App) forget() (tea.Model, tea.Cmd) {
	if a.state != viewSubcategory && a.state != viewShop {
		return a, nil
	}
	kind := recommend.KindSubcategory
	if a.state == viewShop {
		kind = recommend.KindShop
	}
	sugs := a.suggestions(kind)
	if len(sugs) == 0 {
		return a, nil
	}
	if a.sugCursor >= len(sugs) {
		a.sugCursor = len(sugs) - 1
	}
	name := sugs[a.sugCursor]
	a.rec.Archive(a.ctx, kind, a.userID, a.draft.CategoryName, name)
	a.sugCursor = 0
	a.status = fmt.Sprintf("forgot %q", name)
	return a, nil
}

// accept takes the highlighted suggestion (or the typed text when nothing
// matches) and advances to the next field.
func (a *App) accept() (tea.Model, tea.Cmd) {
	switch a.state {
	case viewSubcategory, viewShop:
		kind := recommend.KindSubcategory
		if a.state == viewShop {
			kind = recommend.KindShop
		}
		picked := a.pickedSuggestion(kind)
		if picked == "" {
			picked = recommend.CleanDisplay(a.input)
		}
		if picked != "" {
			// speculative add; the save bumps the counter later
			a.rec.Register(a.ctx, kind, a.userID, a.draft.CategoryName, picked)
		}
		if a.state == viewSubcategory {
			a.draft.Subcategory = picked
			a.state = viewShop
		} else {
			a.draft.Shop = picked
			a.state = viewAmount
		}
		a.input = ""
		a.sugCursor = 0
		return a, nil
	case viewAmount:
		cents, err := dollarsToCents(a.input)
		if err != nil {
			a.status = "amount must be a number"
			return a, nil
		}
		a.draft.AmountCents = cents
		a.input = ""
		return a, a.save()
	}
	return a, nil
}

func dollarsToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

func (a *App) pickedSuggestion(kind recommend.Kind) string {
	sugs := a.suggestions(kind)
	if len(sugs) == 0 {
		return ""
	}
	if a.sugCursor >= len(sugs) {
		a.sugCursor = len(sugs) - 1
	}
	typed := recommend.CleanDisplay(a.input)
	if typed != "" && a.sugCursor == 0 && recommend.Normalize(sugs[0]) != recommend.Normalize(typed) {
		// typed text wins unless the user moved the cursor onto a suggestion
		return ""
	}
	return sugs[a.sugCursor]
}

func (a *App) suggestions(kind recommend.Kind) []string {
	key := recommend.NewKey(a.userID, a.draft.CategoryName)
	names, ok := a.rec.Cache.Names(kind, key)
	if !ok {
		return nil
	}
	return recommend.Filter(names, a.input)
}

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) View() string {
	switch a.state {
	case viewSubcategory:
		return a.renderPicker("Subcategory", recommend.KindSubcategory)
	case viewShop:
		return a.renderPicker("Shop", recommend.KindShop)
	case viewAmount:
		return a.renderAmount()
	default:
		return a.renderCategories()
	}
}

func (a *App) renderCategories() string {
	title := titleStyle.Render("Pennypost - Log Expense")
	out := title + "\n"
	for i, c := range a.categories {
		marker := " "
		if i == a.catCursor {
			marker = "▶"
		}
		label := c.Name
		if color, ok := a.rec.Cache.CategoryColor(c.ID, a.userID, c.Name); ok {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(c.Name)
		}
		out += fmt.Sprintf("%s %s\n", marker, label)
	}
	out += "[enter] Pick  [j/k] Move  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderPicker(label string, kind recommend.Kind) string {
	header := a.draft.CategoryName
	if color, ok := a.rec.Cache.CategoryColor(a.draft.CategoryID, a.userID, a.draft.CategoryName); ok {
		header = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(header)
	}
	out := titleStyle.Render(label) + " for " + header + "\n"
	out += "> " + a.input + "\n"
	sugs := a.suggestions(kind)
	if len(sugs) == 0 {
		out += "(no suggestions yet - type a name)\n"
	}
	for i, s := range sugs {
		marker := " "
		if i == a.sugCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, s)
	}
	out += "[enter] Accept  [ctrl+d] Forget  [esc] Back"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderAmount() string {
	out := titleStyle.Render("Amount") + fmt.Sprintf(" (%s)\n", a.cfg.UI.CurrencySymbol)
	out += "> " + a.input + "\n"
	sub, shop := a.draft.Subcategory, a.draft.Shop
	if sub == "" {
		sub = "-"
	}
	if shop == "" {
		shop = "-"
	}
	out += fmt.Sprintf("%s / %s / %s\n", a.draft.CategoryName, sub, shop)
	out += "[enter] Save  [esc] Cancel"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
