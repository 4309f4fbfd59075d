package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

func (a *app) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := db.CurrentVersion(a.database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready: %s (schema version %d)\n", a.cfg.DBPath, version)
			return nil
		},
	}
}

func (a *app) newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with sample records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			if err := a.seed(cmd, today); err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sample records created.")
			return nil
		},
	}
}

func intPtr(n int) *int { return &n }

// seed writes a small, internally consistent data set. Borrowing dates are
// relative to today so that the overdue report always has something to show.
func (a *app) seed(cmd *cobra.Command, today model.Date) error {
	ctx := cmd.Context()

	existing, err := store.ListBooks(ctx, a.database, model.BookFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errors.New("database already contains books")
	}

	books := []model.Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227", PublicationYear: intPtr(1937), Genre: "Fantasy", TotalCopies: 3},
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", PublicationYear: intPtr(1965), Genre: "Science Fiction", TotalCopies: 2},
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", PublicationYear: intPtr(1813), Genre: "Romance", TotalCopies: 1},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "9780135957059", PublicationYear: intPtr(1999), Genre: "Technology", TotalCopies: 1},
	}
	bookIDs := make([]int64, len(books))
	for i, b := range books {
		b.AvailableCopies = b.TotalCopies
		created, err := store.CreateBook(ctx, a.database, b)
		if err != nil {
			return err
		}
		bookIDs[i] = created.ID
	}

	members := []model.Member{
		{FirstName: "Ana", LastName: "Novak", Email: "ana.novak@example.com", JoinDate: today.AddDays(-400)},
		{FirstName: "Luka", LastName: "Kranjc", Email: "luka.kranjc@example.com", JoinDate: today.AddDays(-200)},
		{FirstName: "Maja", LastName: "Horvat", Email: "maja.horvat@example.com", JoinDate: today.AddDays(-90)},
	}
	memberIDs := make([]int64, len(members))
	for i, m := range members {
		created, err := store.CreateMember(ctx, a.database, m)
		if err != nil {
			return err
		}
		memberIDs[i] = created.ID
	}

	loans := []struct {
		book, member int
		borrowedAgo  int
		returnedAgo  int // -1 while still open
	}{
		{book: 0, member: 0, borrowedAgo: 40, returnedAgo: 30}, // on time
		{book: 1, member: 0, borrowedAgo: 30, returnedAgo: 5},  // late
		{book: 2, member: 1, borrowedAgo: 20, returnedAgo: -1}, // overdue
		{book: 0, member: 2, borrowedAgo: 3, returnedAgo: -1},  // current
	}
	for _, l := range loans {
		borrowed := today.AddDays(-l.borrowedAgo)
		b, err := store.Checkout(ctx, a.database, bookIDs[l.book], memberIDs[l.member],
			borrowed.AddDays(a.cfg.LoanDays), borrowed)
		if err != nil {
			return err
		}
		if l.returnedAgo >= 0 {
			if _, err := store.ReturnBook(ctx, a.database, b.ID, today.AddDays(-l.returnedAgo)); err != nil {
				return err
			}
		}
	}

	if err := store.UpdateMemberStatus(ctx, a.database, memberIDs[1], model.MembershipSuspended); err != nil {
		return err
	}

	students := []model.Student{
		{FirstName: "Nika", LastName: "Zupan", Email: "nika.zupan@example.com"},
		{FirstName: "Jan", LastName: "Potocnik", Email: "jan.potocnik@example.com"},
	}
	studentIDs := make([]int64, len(students))
	for i, s := range students {
		created, err := store.CreateStudent(ctx, a.database, s, today)
		if err != nil {
			return err
		}
		studentIDs[i] = created.ID
	}

	courses := []model.Course{
		{Code: "MATH101", Title: "Calculus I", Description: "Limits, derivatives and integrals", Credits: 6},
		{Code: "CS102", Title: "Programming", Description: "Introduction to programming", Credits: 5},
	}
	courseIDs := make([]int64, len(courses))
	for i, c := range courses {
		created, err := store.CreateCourse(ctx, a.database, c)
		if err != nil {
			return err
		}
		courseIDs[i] = created.ID
	}

	enrolledAt := today.Time().Add(-30 * 24 * time.Hour)
	for _, pair := range [][2]int{{0, 0}, {0, 1}, {1, 1}} {
		e, err := store.Enroll(ctx, a.database, studentIDs[pair[0]], courseIDs[pair[1]], enrolledAt)
		if err != nil {
			return err
		}
		if pair == [2]int{0, 0} {
			if _, err := store.AssignGrade(ctx, a.database, e.ID, "A"); err != nil {
				return err
			}
		}
	}
	return nil
}
