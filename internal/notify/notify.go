package notify

import (
	"errors"
	"fmt"
	"time"
)

// Job names, also used as metric labels and run log keys.
const (
	JobNewBooks    = "new_books"
	JobAnniversary = "anniversary"
)

const (
	newBooksSubject    = "Latest books: "
	anniversarySubject = "Anniversary books"
)

// AnniversaryOffsets are the publication ages, in years, that get announced.
var AnniversaryOffsets = []int{5, 10, 20}

// ErrAlreadyRan is returned when a job already ran for the day.
var ErrAlreadyRan = errors.New("job already ran today")

// Run is a claimed execution of a job.
type Run struct {
	Job        string
	RunOn      time.Time
	Books      int
	Recipients int
}

// Result summarizes one job execution.
type Result struct {
	Job        string
	Books      int
	Recipients int
	Sent       int
	Failed     int
}

func (r Result) String() string {
	switch r.Job {
	case JobAnniversary:
		return fmt.Sprintf("%d anniversary books sent.", r.Books)
	default:
		return fmt.Sprintf("%d new books sent.", r.Books)
	}
}
