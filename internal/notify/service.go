package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/metrics"

	"github.com/rs/zerolog/log"
)

type Service struct {
	books      BookSource
	recipients RecipientSource
	runs       RunLog
	mailer     Mailer
	from       string
	now        func() time.Time
}

func NewService(books BookSource, recipients RecipientSource, runs RunLog, mailer Mailer, from string) *Service {
	return &Service{
		books:      books,
		recipients: recipients,
		runs:       runs,
		mailer:     mailer,
		from:       from,
		now:        time.Now,
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewBooks announces books published since yesterday's date.
func (s *Service) NewBooks(ctx context.Context, force bool) (Result, error) {
	cutoff := dateOf(s.now().Add(-24 * time.Hour))
	books, err := s.books.ListPublishedSince(ctx, cutoff)
	if err != nil {
		return Result{Job: JobNewBooks}, fmt.Errorf("select new books: %w", err)
	}
	return s.deliver(ctx, JobNewBooks, newBooksSubject, books, force)
}

// Anniversary announces books published 5, 10 or 20 years before the current year.
func (s *Service) Anniversary(ctx context.Context, force bool) (Result, error) {
	year := s.now().Year()
	years := make([]int, 0, len(AnniversaryOffsets))
	for _, offset := range AnniversaryOffsets {
		years = append(years, year-offset)
	}
	books, err := s.books.ListPublishedInYears(ctx, years)
	if err != nil {
		return Result{Job: JobAnniversary}, fmt.Errorf("select anniversary books: %w", err)
	}
	return s.deliver(ctx, JobAnniversary, anniversarySubject, books, force)
}

// Run dispatches by job name.
func (s *Service) Run(ctx context.Context, job string, force bool) (Result, error) {
	switch job {
	case JobNewBooks:
		return s.NewBooks(ctx, force)
	case JobAnniversary:
		return s.Anniversary(ctx, force)
	default:
		return Result{}, fmt.Errorf("unknown job %q", job)
	}
}

func (s *Service) deliver(ctx context.Context, job, subject string, books []book.Book, force bool) (Result, error) {
	res := Result{Job: job, Books: len(books)}
	metrics.RecordBooksSelected(job, len(books))
	logger := log.With().Str("job", job).Logger()

	if len(books) == 0 {
		logger.Info().Msg("no books to announce")
		return res, nil
	}

	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		return res, fmt.Errorf("list recipients: %w", err)
	}
	res.Recipients = len(recipients)

	run := Run{Job: job, RunOn: dateOf(s.now()), Books: len(books), Recipients: len(recipients)}
	if err := s.runs.Claim(ctx, run, force); err != nil {
		return res, fmt.Errorf("claim %s run: %w", job, err)
	}

	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	body := strings.Join(titles, "\n")

	for _, u := range recipients {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := s.mailer.Send(ctx, Message{From: s.from, To: u.Email, Subject: subject, Body: body})
		metrics.RecordEmail(job, err)
		if err != nil {
			res.Failed++
			logger.Warn().Err(err).Int64("user_id", u.ID).Msg("notification email failed")
			continue
		}
		res.Sent++
	}

	logger.Info().
		Int("books", res.Books).
		Int("recipients", res.Recipients).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg(res.String())
	return res, nil
}
