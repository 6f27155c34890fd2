package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu      sync.Mutex
	sent    []Message
	failFor map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type serviceFixture struct {
	service    *Service
	books      *MockBookSource
	recipients *MockRecipientSource
	runs       *MockRunLog
	mailer     *recordingMailer
}

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newServiceFixture(t *testing.T) serviceFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	f := serviceFixture{
		books:      NewMockBookSource(ctrl),
		recipients: NewMockRecipientSource(ctrl),
		runs:       NewMockRunLog(ctrl),
		mailer:     &recordingMailer{failFor: map[string]bool{}},
	}
	f.service = NewService(f.books, f.recipients, f.runs, f.mailer, "library@example.com")
	f.service.now = func() time.Time { return fixedNow }
	return f
}

var readers = []user.User{
	{ID: 1, Email: "a@example.com", IsActive: true},
	{ID: 2, Email: "b@example.com", IsActive: true},
}

func TestService_NewBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("one message per recipient", func(t *testing.T) {
		f := newServiceFixture(t)
		f.books.EXPECT().ListPublishedSince(gomock.Any(), time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)).
			Return([]book.Book{{Title: "Dune"}, {Title: "Emma"}}, nil)
		f.recipients.EXPECT().ListRecipients(gomock.Any()).Return(readers, nil)
		f.runs.EXPECT().Claim(gomock.Any(), Run{
			Job: JobNewBooks, RunOn: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Books: 2, Recipients: 2,
		}, false).Return(nil)

		res, err := f.service.NewBooks(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "2 new books sent.", res.String())
		assert.Equal(t, 2, res.Sent)

		require.Len(t, f.mailer.sent, 2)
		msg := f.mailer.sent[0]
		assert.Equal(t, "Latest books: ", msg.Subject)
		assert.Equal(t, "Dune\nEmma", msg.Body)
		assert.Equal(t, "library@example.com", msg.From)
		assert.Equal(t, "a@example.com", msg.To)
	})

	t.Run("nothing new sends nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		f.books.EXPECT().ListPublishedSince(gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.service.NewBooks(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "0 new books sent.", res.String())
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("failed send does not stop the others", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mailer.failFor["a@example.com"] = true
		f.books.EXPECT().ListPublishedSince(gomock.Any(), gomock.Any()).Return([]book.Book{{Title: "Dune"}}, nil)
		f.recipients.EXPECT().ListRecipients(gomock.Any()).Return(readers, nil)
		f.runs.EXPECT().Claim(gomock.Any(), gomock.Any(), false).Return(nil)

		res, err := f.service.NewBooks(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Sent)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "b@example.com", f.mailer.sent[0].To)
	})

	t.Run("second run the same day is skipped", func(t *testing.T) {
		f := newServiceFixture(t)
		f.books.EXPECT().ListPublishedSince(gomock.Any(), gomock.Any()).Return([]book.Book{{Title: "Dune"}}, nil)
		f.recipients.EXPECT().ListRecipients(gomock.Any()).Return(readers, nil)
		f.runs.EXPECT().Claim(gomock.Any(), gomock.Any(), false).Return(ErrAlreadyRan)

		_, err := f.service.NewBooks(ctx, false)
		assert.ErrorIs(t, err, ErrAlreadyRan)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newServiceFixture(t)
		f.books.EXPECT().ListPublishedSince(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := f.service.NewBooks(ctx, false)
		assert.Error(t, err)
	})
}

func TestService_Anniversary(t *testing.T) {
	ctx := context.Background()

	t.Run("selects 5, 10 and 20 year old books", func(t *testing.T) {
		f := newServiceFixture(t)
		f.books.EXPECT().ListPublishedInYears(gomock.Any(), []int{2019, 2014, 2004}).
			Return([]book.Book{{Title: "Old"}, {Title: "Older"}, {Title: "Oldest"}}, nil)
		f.recipients.EXPECT().ListRecipients(gomock.Any()).Return(readers[:1], nil)
		f.runs.EXPECT().Claim(gomock.Any(), gomock.Any(), true).Return(nil)

		res, err := f.service.Anniversary(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, "3 anniversary books sent.", res.String())
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "Anniversary books", f.mailer.sent[0].Subject)
		assert.Equal(t, "Old\nOlder\nOldest", f.mailer.sent[0].Body)
	})
}

func TestService_Run(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Run(context.Background(), "weekly", false)
	assert.Error(t, err)
}
