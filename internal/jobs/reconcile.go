package jobs

// Derived per-job completion view merging mailer-print and card-print runs.
// Grouping uses a typed composite key so bank ids compare as integers, not
// concatenated strings.

type GroupKey struct {
	JobCode string
	BankID  uint
}

type MailerPrintEntry struct {
	JobID        uint   `json:"jobId"`
	JobCode      string `json:"jobCode"`
	BankName     string `json:"bankName"`
	Shift        string `json:"shift"`
	TotalQty     int    `json:"totalQty"`
	CompletedQty int    `json:"completedQty"`
	Remaining    int    `json:"remaining"`
	CreatedAt    string `json:"createdAt"`
}

type CardPrintEntry struct {
	ID           uint   `json:"id"`
	JobCode      string `json:"jobCode"`
	BankName     string `json:"bankName"`
	Operator     string `json:"operator"`
	Device       string `json:"device"`
	Shift        string `json:"shift"`
	TotalQty     int    `json:"totalQty"`
	CompletedQty int    `json:"completedQty"`
	Remaining    int    `json:"remaining"`
	CreatedAt    string `json:"createdAt"`
}

type JobGroup struct {
	JobCode          string             `json:"jobCode"`
	BankName         string             `json:"bankName"`
	CardPrinting     []CardPrintEntry   `json:"cardPrinting"`
	MailerPrinting   []MailerPrintEntry `json:"mailerPrinting"`
	CardRemaining    int                `json:"cardRemaining"`
	MailerRemaining  int                `json:"mailerRemaining"`
	CompletionStatus string             `json:"completionStatus"`
}

const (
	StatusPending   = "Pending"
	StatusPartially = "Partially Completed"
	StatusCompleted = "Completed"
)

// EmptySidePolicy decides how a group with rows on only one side is
// classified. Some facilities genuinely have card-only jobs; others want
// a one-sided job flagged until both sides report.
type EmptySidePolicy string

const (
	// EmptySideCounts: a side without rows sums to remaining 0 and counts
	// as done.
	EmptySideCounts EmptySidePolicy = "counts"
	// EmptySideNotApplicable: a one-sided group is at most Partially
	// Completed.
	EmptySideNotApplicable EmptySidePolicy = "not_applicable"
)

// sumRemaining totals the remaining column without clamping; a negative
// total means completed exceeded planned and should stay visible.
func (g *JobGroup) sumRemaining() (card, mailer int) {
	for _, e := range g.CardPrinting {
		card += e.Remaining
	}
	for _, e := range g.MailerPrinting {
		mailer += e.Remaining
	}
	return card, mailer
}

func deriveCompletionStatus(cardRemaining, mailerRemaining, cardCount, mailerCount int, policy EmptySidePolicy) string {
	if policy == EmptySideNotApplicable && (cardCount == 0) != (mailerCount == 0) {
		populatedRemaining := cardRemaining
		if cardCount == 0 {
			populatedRemaining = mailerRemaining
		}
		if populatedRemaining == 0 {
			return StatusPartially
		}
		return StatusPending
	}

	switch {
	case cardRemaining == 0 && mailerRemaining == 0:
		return StatusCompleted
	case cardRemaining == 0 || mailerRemaining == 0:
		return StatusPartially
	default:
		return StatusPending
	}
}

// Finalize computes the remaining sums and the completion status for a
// group after both sides have been filled in.
func (g *JobGroup) Finalize(policy EmptySidePolicy) {
	g.CardRemaining, g.MailerRemaining = g.sumRemaining()
	g.CompletionStatus = deriveCompletionStatus(
		g.CardRemaining, g.MailerRemaining,
		len(g.CardPrinting), len(g.MailerPrinting),
		policy,
	)
}
