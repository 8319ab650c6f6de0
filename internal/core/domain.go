package core

import (
	"errors"
	"strings"
)

const (
	Income  RecordType = "הכנסה"
	Expense RecordType = "הוצאה"
)

const (
	Food          Category = "מזון"
	Housing       Category = "דיור"
	Transport     Category = "תחבורה"
	Entertainment Category = "בילויים"
	Health        Category = "בריאות"
	Savings       Category = "חיסכון"
	Shopping      Category = "קניות"
	Gifts         Category = "מתנות"
	Other         Category = "אחר"
)

type (
	RecordType string

	Category string

	// Record is a single ledger entry. Records are values: the store hands out
	// copies and never changes one after it has been appended.
	Record struct {
		Type     RecordType
		Amount   float64
		Category Category
		Month    string // free-text month key, grouped by string equality
		Tags     string
	}

	// Goal is the savings target for one month.
	Goal struct {
		Month        string
		TargetAmount float64
	}

	// Ledger is the aggregate of all records and goals for a session.
	Ledger struct {
		Records []Record        // insertion order, append only
		Goals   map[string]Goal // keyed by month
	}

	// MonthlySummary is derived from the ledger and never stored.
	MonthlySummary struct {
		Month   string
		Income  float64
		Expense float64
		Net     float64
		Goal    *Goal
		MetGoal *bool // nil when no goal is set for the month
	}

	// CategoryAmount is one slice of a month's expense breakdown.
	CategoryAmount struct {
		Category Category
		Amount   float64
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidGoal       = errors.New("invalid goal")
	ErrInvalidRecordType = errors.New("invalid record type")
	ErrInvalidCategory   = errors.New("invalid category")
)

var categories = []Category{Food, Housing, Transport, Entertainment, Health, Savings, Shopping, Gifts, Other}

// Categories returns the closed set of category labels in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (t RecordType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidRecordType
	}
}

func (t RecordType) String() string { return string(t) }

// ParseRecordType accepts the ledger labels as well as "income"/"expense".
func ParseRecordType(s string) (RecordType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Income), "income":
		return Income, nil
	case string(Expense), "expense":
		return Expense, nil
	}
	return "", ErrInvalidRecordType
}

func (c Category) Validate() error {
	for _, known := range categories {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

func (c Category) String() string { return string(c) }

func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// NewRecord builds a Record from collaborator input. Type and category are
// expected to be pre-validated; the amount is parsed here.
func NewRecord(t RecordType, amount string, c Category, month, tags string) (Record, error) {
	v, err := ParseAmount(amount)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Type:     t,
		Amount:   v,
		Category: c,
		Month:    month,
		Tags:     tags,
	}, nil
}

// NewGoal builds a Goal. A missing month or an unparseable target yields
// ErrInvalidGoal.
func NewGoal(month, target string) (Goal, error) {
	if strings.TrimSpace(month) == "" {
		return Goal{}, ErrInvalidGoal
	}
	v, err := ParseAmount(target)
	if err != nil {
		return Goal{}, ErrInvalidGoal
	}
	return Goal{Month: month, TargetAmount: v}, nil
}

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return Ledger{Goals: map[string]Goal{}}
}

// Clone returns a deep copy so callers cannot alias store internals.
func (l Ledger) Clone() Ledger {
	out := Ledger{
		Records: append([]Record(nil), l.Records...),
		Goals:   make(map[string]Goal, len(l.Goals)),
	}
	for k, v := range l.Goals {
		out.Goals[k] = v
	}
	return out
}

func (r Record) IsIncome() bool { return r.Type == Income }

// Validate checks a fully built record, e.g. one replayed from storage.
func (r Record) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := validAmount(r.Amount); err != nil {
		return err
	}
	return r.Category.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Month) == "" || validAmount(g.TargetAmount) != nil {
		return ErrInvalidGoal
	}
	return nil
}
