package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/shelfmate/shelfmate/internal/domain"
)

func (a *app) timeout() time.Duration {
	return time.Duration(a.cfg.RequestTimeoutSec) * time.Second
}

func (a *app) cmdLog(args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	rating := fs.Int("rating", 0, "rating 1-5 (prompted when omitted)")
	review := fs.String("review", "", "short review")
	status := fs.String("status", "", "reading, finished, or abandoned")
	finished := fs.String("finished", "", "finish date (today, June 2024, 15-03-2024, ...)")
	started := fs.String("started", "", "start date")
	yes := fs.Bool("yes", false, "accept the first search match without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return errors.New("usage: shelfmate log <book name> [flags]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	results := a.lookup.Search(ctx, query, 5)
	cancel()
	if len(results) == 0 {
		return errors.New("couldn't find that book, try a different name")
	}

	in := bufio.NewReader(os.Stdin)

	chosen := results[0]
	if len(results) > 1 && !*yes {
		fmt.Printf("\nFound %d matches:\n\n", len(results))
		printPicker(results)
		idx, err := promptIndex(in, len(results))
		if err != nil {
			return err
		}
		chosen = results[idx]
	} else {
		fmt.Printf("\nFound: %s by %s\n", emph.Sprint(chosen.Title), chosen.Author)
	}

	params := domain.ReadParams{
		Title:  chosen.Title,
		Author: chosen.Author,
		ISBN:   chosen.ISBN,
		Rating: *rating,
		Review: *review,
	}

	if params.Rating == 0 {
		r, err := promptRating(in)
		if err != nil {
			return err
		}
		params.Rating = r
	}
	if params.Review == "" {
		params.Review = prompt(in, "Quick review (Enter to skip)", "")
	}

	statusInput := *status
	if statusInput == "" {
		dim.Println("\n  1. finished  2. reading  3. abandoned")
		statusInput = prompt(in, "Status", "1")
	}
	params.Status = mapStatus(statusInput)

	if t, ok := parseFlexibleDate(*started); ok {
		params.StartedAt = &t
	}
	if params.Status != domain.StatusReading {
		finishedInput := *finished
		if finishedInput == "" {
			dim.Println("\n  Accepts: 'June 2024', '15-03-2024', or Enter for today")
			finishedInput = prompt(in, "When did you finish it?", "today")
		}
		t, ok := parseFlexibleDate(finishedInput)
		if !ok {
			dim.Printf("  Couldn't parse %q, using today.\n", finishedInput)
			t, _ = parseFlexibleDate("today")
		}
		params.FinishedAt = &t
	}

	ctx, cancel = context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	read, err := a.reads.Log(ctx, params)
	if err != nil {
		return err
	}

	fmt.Println()
	accent.Println("Logged")
	fmt.Printf("  %s by %s\n", emph.Sprint(read.Title), read.Author)
	fmt.Printf("  Rating: %s  |  Status: %s\n", stars(read.Rating), read.Status)
	if read.Review != "" {
		fmt.Printf("  %q\n", read.Review)
	}
	dim.Printf("  ID: %s\n", read.ID)
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status (reading, finished, abandoned)")
	minRating := fs.Int("min-rating", 0, "minimum rating filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var f domain.ReadFilter
	if *status != "" {
		s, err := domain.ParseStatus(*status)
		if err != nil {
			return err
		}
		f.Status = s
	}
	f.MinRating = *minRating

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	reads, err := a.reads.List(ctx, f)
	if err != nil {
		return err
	}
	if len(reads) == 0 {
		dim.Println("No reads found. Use `shelfmate log` to add some.")
		return nil
	}

	for _, r := range reads {
		review := r.Review
		if len([]rune(review)) > 80 {
			review = string([]rune(review)[:80]) + "..."
		}
		fmt.Printf("%s  %s by %s  %s  %s\n", dim.Sprint(r.ID), emph.Sprint(r.Title), r.Author, stars(r.Rating), r.Status)
		if review != "" {
			dim.Printf("          %s\n", review)
		}
	}
	return nil
}

func (a *app) cmdShow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shelfmate show <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	read, err := a.reads.Get(ctx, args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no read found with ID %q", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s\n", emph.Sprint(read.Title), read.Author)
	fmt.Printf("Rating: %s  |  Status: %s\n", stars(read.Rating), read.Status)
	isbn := read.ISBN
	if isbn == "" {
		isbn = "N/A"
	}
	fmt.Printf("ISBN: %s\n", isbn)
	if read.StartedAt != nil {
		fmt.Printf("Started: %s\n", read.StartedAt.Format("2006-01-02"))
	}
	if read.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", read.FinishedAt.Format("2006-01-02"))
	}
	if read.Review != "" {
		fmt.Printf("\n%q\n", read.Review)
	}
	dim.Printf("\nID: %s | Logged: %s\n", read.ID, read.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func (a *app) cmdSearch(args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		return errors.New("usage: shelfmate search <query>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	results := a.lookup.Search(ctx, query, 5)
	if len(results) == 0 {
		dim.Println("No results found.")
		return nil
	}

	for i, book := range results {
		accent.Printf("#%d  ", i+1)
		fmt.Printf("%s by %s\n", emph.Sprint(book.Title), book.Author)

		published, pages := book.PublishedDate, "N/A"
		if published == "" {
			published = "N/A"
		}
		if book.PageCount > 0 {
			pages = strconv.Itoa(book.PageCount)
		}
		fmt.Printf("    Published: %s  |  Pages: %s\n", published, pages)

		if book.AverageRating > 0 {
			fmt.Printf("    Rating: %.1f/5 (%d ratings)\n", book.AverageRating, book.RatingsCount)
		}
		if book.ISBN != "" {
			fmt.Printf("    ISBN: %s\n", book.ISBN)
		}
		if len(book.Categories) > 0 {
			fmt.Printf("    Categories: %s\n", strings.Join(book.Categories, ", "))
		}
		if book.Description != "" {
			desc := book.Description
			if len([]rune(desc)) > 200 {
				desc = string([]rune(desc)[:200]) + "..."
			}
			fmt.Printf("    %s\n", desc)
		}
		if book.InfoURL != "" {
			dim.Printf("    %s\n", book.InfoURL)
		}
		fmt.Println()
	}
	return nil
}

func (a *app) cmdRecommend(args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	mood := fs.String("mood", "", "what you're in the mood for")
	direction := fs.String("direction", string(domain.DirectionBalance), "explore-new, go-deeper, or balance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *mood == "" {
		in := bufio.NewReader(os.Stdin)
		*mood = prompt(in, "What are you in the mood for?", "")
		if *mood == "" {
			return errors.New("mood is required")
		}
	}
	dir, err := domain.ParseDirection(*direction)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s %s\n", emph.Sprint("Mood:"), *mood)
	fmt.Printf("%s %s\n\n", emph.Sprint("Direction:"), dir)
	dim.Println("Thinking about what you should read next...")

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	session, err := a.recommend.Recommend(ctx, *mood, dir)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationProvider) || errors.Is(err, domain.ErrEmbeddingProvider) {
			return errors.New("error generating recommendations, try again later")
		}
		return err
	}

	fmt.Println()
	accent.Printf("Session %s  |  %d recommendations\n", session.ID, len(session.Recommendations))
	printRecommendations(session.Recommendations)
	return nil
}

func (a *app) cmdSessions(args []string) error {
	if len(args) != 0 {
		return errors.New("usage: shelfmate sessions")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
	defer cancel()
	sessions, err := a.recommend.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		dim.Println("No recommendation sessions yet. Use `shelfmate recommend` to get started.")
		return nil
	}

	for _, s := range sessions {
		fmt.Println()
		dim.Printf("%s  ", s.CreatedAt.Format("2006-01-02 15:04"))
		emph.Print(s.Mood)
		dim.Printf("  (%s)\n", s.Direction)
		printRecommendations(s.Recommendations)
	}
	return nil
}

func printRecommendations(recs []domain.BookRecommendation) {
	for i, rec := range recs {
		fmt.Println()
		accent.Printf("  #%d  ", i+1)
		fmt.Printf("%s by %s  %s\n", emph.Sprint(rec.Title), rec.Author, matchLabel(rec.Match))
		dim.Printf("      %s\n", rec.Reason)
	}
}

func matchLabel(m domain.Match) string {
	switch m {
	case domain.MatchClose:
		return color.MagentaString(string(m))
	case domain.MatchBoundary:
		return color.CyanString(string(m))
	case domain.MatchSurprising:
		return color.HiMagentaString(string(m))
	}
	return string(m)
}

func printPicker(results []domain.BookSearchResult) {
	for i, book := range results {
		var meta []string
		if book.Author != "" && book.Author != "Unknown" {
			meta = append(meta, book.Author)
		}
		if book.PublishedDate != "" {
			meta = append(meta, book.PublishedDate)
		}
		if book.PageCount > 0 {
			meta = append(meta, fmt.Sprintf("%dp", book.PageCount))
		}

		accent.Printf("  %d. ", i+1)
		emph.Println(book.Title)
		if len(meta) > 0 {
			fmt.Printf("     %s\n", strings.Join(meta, "  |  "))
		}
		if book.Description != "" {
			desc := book.Description
			if len([]rune(desc)) > 120 {
				desc = string([]rune(desc)[:120]) + "..."
			}
			dim.Printf("     %s\n", desc)
		}
		fmt.Println()
	}
}

func prompt(in *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptIndex(in *bufio.Reader, n int) (int, error) {
	for attempts := 0; attempts < 5; attempts++ {
		choice := prompt(in, "Which one?", "1")
		idx, err := strconv.Atoi(choice)
		if err == nil && idx >= 1 && idx <= n {
			return idx - 1, nil
		}
		errText.Printf("Please enter a number between 1 and %d\n", n)
	}
	return 0, errors.New("no valid choice made")
}

func promptRating(in *bufio.Reader) (int, error) {
	for attempts := 0; attempts < 5; attempts++ {
		input := prompt(in, "How would you rate it? (1-5)", "")
		if input == "" {
			return 0, nil // domain applies the default
		}
		r, err := strconv.Atoi(input)
		if err == nil && r >= domain.MinRating && r <= domain.MaxRating {
			return r, nil
		}
		errText.Println("Please enter a number between 1 and 5")
	}
	return 0, errors.New("no valid rating given")
}

func mapStatus(input string) domain.Status {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "2", "reading":
		return domain.StatusReading
	case "3", "abandoned", "dnf":
		return domain.StatusAbandoned
	default:
		return domain.StatusFinished
	}
}

func stars(rating int) string {
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}
