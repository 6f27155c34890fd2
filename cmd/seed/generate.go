package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	firstNames = []string{"Ursula", "Isaac", "Frank", "Mary", "Jane", "Leo", "Toni", "Gabriel", "Haruki", "Chinua", "Virginia", "Jorge"}
	lastNames  = []string{"Le Guin", "Asimov", "Herbert", "Shelley", "Austen", "Tolstoy", "Morrison", "Marquez", "Murakami", "Achebe", "Woolf", "Borges"}
	genres     = []string{"Fiction", "Science Fiction", "History", "Science", "Romance", "Mystery", "Biography", "Philosophy", "Poetry", "Fantasy"}
	words      = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Nature", "History", "Future", "Past", "Reality",
		"Wisdom", "Light", "Darkness", "World", "Time", "Space", "Mind", "Soul",
	}
)

type seedAuthor struct {
	firstName string
	lastName  string
	biography string
	born      time.Time
	died      *time.Time
}

type seedBook struct {
	title     string
	summary   string
	isbn      string
	published time.Time
	genre     string
	authorIdx []int
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func generateAuthors(rng *rand.Rand, n int) []seedAuthor {
	out := make([]seedAuthor, 0, n)
	for i := 0; i < n; i++ {
		born := date(1800+rng.Intn(180), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		a := seedAuthor{
			firstName: pick(rng, firstNames),
			lastName:  pick(rng, lastNames),
			biography: fmt.Sprintf("Writes about %s.", strings.ToLower(pick(rng, words))),
			born:      born,
		}
		if rng.Intn(3) == 0 {
			died := born.AddDate(40+rng.Intn(50), 0, 0)
			a.died = &died
		}
		out = append(out, a)
	}
	return out
}

// generateBooks spreads publication dates so that both notification jobs
// have something to send: a few books from yesterday and today, and a few
// from exactly 5, 10 and 20 years ago.
func generateBooks(rng *rand.Rand, n, authorCount int, now time.Time) []seedBook {
	today := date(now.Year(), now.Month(), now.Day())
	special := []time.Time{
		today,
		today.AddDate(0, 0, -1),
		today.AddDate(-5, 0, 0),
		today.AddDate(-10, 0, 0),
		today.AddDate(-20, 0, 0),
	}

	out := make([]seedBook, 0, n)
	for i := 0; i < n; i++ {
		published := date(1950+rng.Intn(70), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		if i < len(special) {
			published = special[i]
		}

		b := seedBook{
			title:     fmt.Sprintf("%s of %s", pick(rng, words), pick(rng, words)),
			summary:   fmt.Sprintf("A book about %s.", strings.ToLower(pick(rng, words))),
			isbn:      isbn13(i + 1),
			published: published,
			genre:     pick(rng, genres),
		}
		if authorCount > 0 {
			// 1-3 distinct authors
			seen := map[int]bool{}
			for j := 0; j <= rng.Intn(3); j++ {
				idx := rng.Intn(authorCount)
				if !seen[idx] {
					seen[idx] = true
					b.authorIdx = append(b.authorIdx, idx)
				}
			}
		}
		out = append(out, b)
	}
	return out
}

// isbn13 builds a valid ISBN-13 in the 978 prefix from a sequence number.
func isbn13(seq int) string {
	body := fmt.Sprintf("978%09d", seq)
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return fmt.Sprintf("%s%d", body, check)
}
