package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCompletionStatus(t *testing.T) {
	tests := []struct {
		name            string
		cardRemaining   int
		mailerRemaining int
		cardCount       int
		mailerCount     int
		policy          EmptySidePolicy
		want            string
	}{
		{
			name:          "both sides done",
			cardRemaining: 0, mailerRemaining: 0, cardCount: 2, mailerCount: 1,
			policy: EmptySideCounts, want: StatusCompleted,
		},
		{
			name:          "card side done only",
			cardRemaining: 0, mailerRemaining: 40, cardCount: 1, mailerCount: 1,
			policy: EmptySideCounts, want: StatusPartially,
		},
		{
			name:          "mailer side done only",
			cardRemaining: 25, mailerRemaining: 0, cardCount: 1, mailerCount: 1,
			policy: EmptySideCounts, want: StatusPartially,
		},
		{
			name:          "neither side done",
			cardRemaining: 25, mailerRemaining: 40, cardCount: 1, mailerCount: 1,
			policy: EmptySideCounts, want: StatusPending,
		},
		{
			name:          "overrun stays visible as partial",
			cardRemaining: -5, mailerRemaining: 0, cardCount: 1, mailerCount: 1,
			policy: EmptySideCounts, want: StatusPartially,
		},
		{
			name:          "counts policy treats an empty side as done",
			cardRemaining: 0, mailerRemaining: 0, cardCount: 1, mailerCount: 0,
			policy: EmptySideCounts, want: StatusCompleted,
		},
		{
			name:          "strict policy caps one-sided done group at partial",
			cardRemaining: 0, mailerRemaining: 0, cardCount: 1, mailerCount: 0,
			policy: EmptySideNotApplicable, want: StatusPartially,
		},
		{
			name:          "strict policy keeps unfinished one-sided group pending",
			cardRemaining: 30, mailerRemaining: 0, cardCount: 1, mailerCount: 0,
			policy: EmptySideNotApplicable, want: StatusPending,
		},
		{
			name:          "strict policy with mailer-only side",
			cardRemaining: 0, mailerRemaining: 0, cardCount: 0, mailerCount: 2,
			policy: EmptySideNotApplicable, want: StatusPartially,
		},
		{
			name:          "strict policy unchanged when both sides present",
			cardRemaining: 0, mailerRemaining: 0, cardCount: 1, mailerCount: 1,
			policy: EmptySideNotApplicable, want: StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveCompletionStatus(tt.cardRemaining, tt.mailerRemaining,
				tt.cardCount, tt.mailerCount, tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobGroupFinalize(t *testing.T) {
	g := &JobGroup{
		JobCode:  "JC100",
		BankName: "First National",
		CardPrinting: []CardPrintEntry{
			{TotalQty: 100, CompletedQty: 60, Remaining: 40},
			{TotalQty: 50, CompletedQty: 50, Remaining: 0},
		},
		MailerPrinting: []MailerPrintEntry{
			{TotalQty: 150, CompletedQty: 150, Remaining: 0},
		},
	}

	g.Finalize(EmptySideCounts)

	assert.Equal(t, 40, g.CardRemaining)
	assert.Equal(t, 0, g.MailerRemaining)
	assert.Equal(t, StatusPartially, g.CompletionStatus)
}

func TestJobGroupFinalizeOverrun(t *testing.T) {
	// completed beyond planned sums below zero rather than clamping
	g := &JobGroup{
		CardPrinting:   []CardPrintEntry{{TotalQty: 100, CompletedQty: 110, Remaining: -10}},
		MailerPrinting: []MailerPrintEntry{{TotalQty: 100, CompletedQty: 100, Remaining: 0}},
	}

	g.Finalize(EmptySideCounts)

	assert.Equal(t, -10, g.CardRemaining)
	assert.Equal(t, StatusPartially, g.CompletionStatus)
}
